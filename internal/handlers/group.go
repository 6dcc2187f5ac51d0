package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/utils"
)

type CreateGroupRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	CloudAccountID  uint   `json:"cloud_account_id" binding:"required"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type UpdateGroupRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	CloudAccountID  uint   `json:"cloud_account_id"`
	IntervalMinutes int    `json:"interval_minutes"`
	Enabled         *bool  `json:"enabled"`
}

func ownedGroup(ctx *gin.Context, projectID uint) (models.InvariantGroup, bool) {
	groupID, err := utils.GetGroupID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.InvariantGroup{}, false
	}

	var group models.InvariantGroup

	if err := db.DB.Where("id = ? AND project_id = ?", groupID, projectID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Invariant group not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invariant group"})
		}
		return models.InvariantGroup{}, false
	}

	return group, true
}

func accountBelongsToProject(accountID, projectID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.CloudAccount{}).
		Where("id = ? AND project_id = ?", accountID, projectID).
		Count(&count).Error

	return count > 0, err
}

func CreateGroup(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	var req CreateGroupRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.IntervalMinutes <= 0 {
		req.IntervalMinutes = 5
	}

	owns, err := accountBelongsToProject(req.CloudAccountID, project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify cloud account"})
		return
	}

	if !owns {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cloud account does not belong to this project"})
		return
	}

	group := models.InvariantGroup{
		ProjectID:       project.ID,
		CloudAccountID:  req.CloudAccountID,
		Name:            req.Name,
		Description:     req.Description,
		IntervalMinutes: req.IntervalMinutes,
		Enabled:         true,
	}

	if err := db.DB.Create(&group).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invariant group"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Invariant group created successfully", "group_id": group.ID})
}

func ListGroups(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	var groups []models.InvariantGroup

	if err := db.DB.Where("project_id = ?", project.ID).Order("created_at ASC").Find(&groups).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invariant groups"})
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

func GetGroup(ctx *gin.Context) {
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

	ctx.JSON(http.StatusOK, gin.H{"group": group, "checks": checks})
}

func UpdateGroup(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	var req UpdateGroupRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		group.Name = req.Name
	}

	group.Description = req.Description

	if req.IntervalMinutes > 0 {
		group.IntervalMinutes = req.IntervalMinutes
	}

	if req.CloudAccountID != 0 && req.CloudAccountID != group.CloudAccountID {
		owns, err := accountBelongsToProject(req.CloudAccountID, project.ID)

		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify cloud account"})
			return
		}

		if !owns {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cloud account does not belong to this project"})
			return
		}

		group.CloudAccountID = req.CloudAccountID
	}

	if req.Enabled != nil {
		group.Enabled = *req.Enabled
	}

	if err := db.DB.Save(&group).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invariant group"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invariant group updated successfully", "group_id": group.ID})
}

func DeleteGroup(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	if err := db.DB.Delete(&group).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invariant group"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// EvaluateGroupNow runs a group on demand and returns the full outcome,
// bypassing the scheduler interval.
func EvaluateGroupNow(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	outcome, err := invariants.EvaluateGroup(ctx.Request.Context(), group.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation failed: " + err.Error()})
		return
	}

	if outcome.Skipped {
		ctx.JSON(http.StatusOK, gin.H{"message": "Group has no checks, evaluation skipped", "skipped": true})
		return
	}

	BroadcastRefresh(strconv.FormatUint(uint64(project.ID), 10))

	ctx.JSON(http.StatusOK, outcome)
}

func ListRuns(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	limit := 50

	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	var runs []models.EvaluationRun

	if err := db.DB.Where("group_id = ?", group.ID).
		Order("evaluated_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve evaluation runs"})
		return
	}

	ctx.JSON(http.StatusOK, runs)
}

func ListRunResults(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	group, ok := ownedGroup(ctx, project.ID)

	if !ok {
		return
	}

	runID, err := utils.GetRunID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var run models.EvaluationRun

	if err := db.DB.Where("id = ? AND group_id = ?", runID, group.ID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Evaluation run not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve evaluation run"})
		}
		return
	}

	var results []models.CheckResultLog

	if err := db.DB.Where("run_id = ?", run.ID).Order("id ASC").Find(&results).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve check results"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"run": run, "results": results})
}
