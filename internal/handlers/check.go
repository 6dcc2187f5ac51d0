package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/adapters"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
	"github.com/driftwatch/driftwatch/internal/utils"
)

type CreateCheckRequest struct {
	Name       string         `json:"name" binding:"required"`
	Service    string         `json:"service" binding:"required"`
	Type       string         `json:"type" binding:"required"`
	Scope      string         `json:"scope"`
	Region     string         `json:"region"`
	Operator   string         `json:"operator"`
	Alias      string         `json:"alias"`
	Parameters map[string]any `json:"parameters"`
}

type UpdateCheckRequest struct {
	Name       string         `json:"name"`
	Service    string         `json:"service"`
	Type       string         `json:"type"`
	Scope      string         `json:"scope"`
	Region     string         `json:"region"`
	Operator   string         `json:"operator"`
	Alias      *string        `json:"alias"`
	Parameters map[string]any `json:"parameters"`
}

// validateCheckShape rejects a service/type/scope/operator combination the
// evaluator cannot dispatch, so bad checks fail at write time instead of
// surfacing as FAIL results on the next tick.
func validateCheckShape(check *models.Check) string {
	if !adapters.Default().Supported(check.Service, check.Type) {
		return "Unsupported service or check type: " + check.Service + "/" + check.Type
	}

	if !types.ValidOperator(check.Operator) {
		return "Unknown operator: " + check.Operator
	}

	global := types.GlobalServices[check.Service]

	switch check.Scope {
	case types.ScopeGlobal:
		if !global {
			return "Service " + check.Service + " requires REGIONAL scope"
		}
		check.Region = ""
	case types.ScopeRegional:
		if global {
			return "Service " + check.Service + " is global and cannot be REGIONAL"
		}
		if check.Region == "" {
			return "Region is required for REGIONAL scope"
		}
	default:
		return "Unknown scope: " + check.Scope
	}

	return ""
}

// aliasTaken reports whether another live check in the group already owns
// the alias.
func aliasTaken(groupID uint, alias string, excludeID uint) (bool, error) {
	if alias == "" {
		return false, nil
	}

	var count int64

	query := db.DB.Model(&models.Check{}).Where("group_id = ? AND alias = ?", groupID, alias)

	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	err := query.Count(&count).Error

	return count > 0, err
}

func ownedCheck(ctx *gin.Context, groupID uint) (models.Check, bool) {
	checkID, err := utils.GetCheckID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Check{}, false
	}

	var check models.Check

	if err := db.DB.Where("id = ? AND group_id = ?", checkID, groupID).First(&check).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Check not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve check"})
		}
		return models.Check{}, false
	}

	return check, true
}

func CreateCheck(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	var req CreateCheckRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Scope == "" {
		if types.GlobalServices[req.Service] {
			req.Scope = types.ScopeGlobal
		} else {
			req.Scope = types.ScopeRegional
		}
	}

	if req.Operator == "" {
		req.Operator = types.OpEquals
	}

	check := models.Check{
		GroupID:    group.ID,
		Name:       req.Name,
		Service:    req.Service,
		Type:       req.Type,
		Scope:      req.Scope,
		Region:     req.Region,
		Operator:   req.Operator,
		Alias:      req.Alias,
		Parameters: datatypes.JSONMap(req.Parameters),
	}

	if msg := validateCheckShape(&check); msg != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	taken, err := aliasTaken(group.ID, check.Alias, 0)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify alias"})
		return
	}

	if taken {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Alias already in use within this group"})
		return
	}

	if err := db.DB.Create(&check).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create check"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Check created successfully", "check_id": check.ID})
}

func ListChecks(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	var checks []models.Check

	if err := db.DB.Where("group_id = ?", group.ID).
		Order("created_at ASC, id ASC").
		Find(&checks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve checks"})
		return
	}

	ctx.JSON(http.StatusOK, checks)
}

func UpdateCheck(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	check, ok := ownedCheck(ctx, group.ID)

	if !ok {
		return
	}

	var req UpdateCheckRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		check.Name = req.Name
	}

	if req.Service != "" {
		check.Service = req.Service
	}

	if req.Type != "" {
		check.Type = req.Type
	}

	if req.Scope != "" {
		check.Scope = req.Scope
	}

	if req.Region != "" {
		check.Region = req.Region
	}

	if req.Operator != "" {
		check.Operator = req.Operator
	}

	if req.Alias != nil {
		check.Alias = *req.Alias
	}

	if req.Parameters != nil {
		check.Parameters = datatypes.JSONMap(req.Parameters)
	}

	if msg := validateCheckShape(&check); msg != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	taken, err := aliasTaken(group.ID, check.Alias, check.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify alias"})
		return
	}

	if taken {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Alias already in use within this group"})
		return
	}

	if err := db.DB.Save(&check).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update check"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Check updated successfully", "check_id": check.ID})
}

func DeleteCheck(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	check, ok := ownedCheck(ctx, group.ID)

	if !ok {
		return
	}

	// Clear the alias before soft-deleting so it is immediately reusable
	// by a live check while the row remains for historical results.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if check.Alias != "" {
			if err := tx.Model(&check).Update("alias", "").Error; err != nil {
				return err
			}
		}

		return tx.Delete(&check).Error
	})

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete check"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
