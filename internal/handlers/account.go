package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/utils"
)

type CreateAccountRequest struct {
	Name            string `json:"name" binding:"required"`
	AccountID       string `json:"account_id" binding:"required"`
	DefaultRegion   string `json:"default_region" binding:"required"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	RoleARN         string `json:"role_arn"`
	ExternalID      string `json:"external_id"`
}

type UpdateAccountRequest struct {
	Name            string `json:"name"`
	DefaultRegion   string `json:"default_region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	RoleARN         string `json:"role_arn"`
	ExternalID      string `json:"external_id"`
}

func ownedAccount(ctx *gin.Context, projectID uint) (models.CloudAccount, bool) {
	accountID, err := utils.GetAccountID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.CloudAccount{}, false
	}

	var account models.CloudAccount

	if err := db.DB.Where("id = ? AND project_id = ?", accountID, projectID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Cloud account not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cloud account"})
		}
		return models.CloudAccount{}, false
	}

	return account, true
}

func CreateAccount(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	var req CreateAccountRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RoleARN == "" && (req.AccessKeyID == "" || req.SecretAccessKey == "") {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Either a role ARN or an access key pair is required"})
		return
	}

	account := models.CloudAccount{
		Name:            req.Name,
		ProjectID:       project.ID,
		AccountID:       req.AccountID,
		DefaultRegion:   req.DefaultRegion,
		AccessKeyID:     req.AccessKeyID,
		SecretAccessKey: req.SecretAccessKey,
		RoleARN:         req.RoleARN,
		ExternalID:      req.ExternalID,
	}

	if err := db.DB.Create(&account).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cloud account"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Cloud account created successfully", "account_id": account.ID})
}

func ListAccounts(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	var accounts []models.CloudAccount

	if err := db.DB.Where("project_id = ?", project.ID).Find(&accounts).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cloud accounts"})
		return
	}

	ctx.JSON(http.StatusOK, accounts)
}

func UpdateAccount(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	account, ok := ownedAccount(ctx, project.ID)

	if !ok {
		return
	}

	var req UpdateAccountRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		account.Name = req.Name
	}

	if req.DefaultRegion != "" {
		account.DefaultRegion = req.DefaultRegion
	}

	// Credentials are replaced wholesale when any field is supplied so a
	// rotation never leaves a stale key pair alongside a new role.
	if req.AccessKeyID != "" || req.SecretAccessKey != "" || req.RoleARN != "" {
		account.AccessKeyID = req.AccessKeyID
		account.SecretAccessKey = req.SecretAccessKey
		account.RoleARN = req.RoleARN
		account.ExternalID = req.ExternalID
	}

	if err := db.DB.Save(&account).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cloud account"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Cloud account updated successfully", "account_id": account.ID})
}

func DeleteAccount(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	account, ok := ownedAccount(ctx, project.ID)

	if !ok {
		return
	}

	var inUse int64

	if err := db.DB.Model(&models.InvariantGroup{}).Where("cloud_account_id = ?", account.ID).Count(&inUse).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check cloud account usage"})
		return
	}

	if inUse > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Cloud account is still referenced by invariant groups"})
		return
	}

	if err := db.DB.Delete(&account).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cloud account"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
