package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func pathID(ctx *gin.Context, name, label string) (uint64, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(label + " not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label)
	}

	return id, nil
}

func GetProjectID(ctx *gin.Context) (uint64, error) {
	return pathID(ctx, "project_id", "Project ID")
}

func GetAccountID(ctx *gin.Context) (uint64, error) {
	return pathID(ctx, "account_id", "Account ID")
}

func GetGroupID(ctx *gin.Context) (uint64, error) {
	return pathID(ctx, "group_id", "Group ID")
}

func GetCheckID(ctx *gin.Context) (uint64, error) {
	return pathID(ctx, "check_id", "Check ID")
}

func GetRunID(ctx *gin.Context) (uint64, error) {
	return pathID(ctx, "run_id", "Run ID")
}
