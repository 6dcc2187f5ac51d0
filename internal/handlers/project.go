package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
	"github.com/driftwatch/driftwatch/internal/utils"
)

type CreateProjectRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	DiscordWebhook string `json:"discord_webhook"`
	SlackWebhook   string `json:"slack_webhook"`
}

type UpdateProjectRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	DiscordWebhook string `json:"discord_webhook"`
	SlackWebhook   string `json:"slack_webhook"`
}

type ProjectSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GroupSummary struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Enabled         bool       `json:"enabled"`
	IntervalMinutes int        `json:"interval_minutes"`
	LastStatus      string     `json:"last_status"`
	LastEvaluatedAt *time.Time `json:"last_evaluated_at"`
	CheckCount      int64      `json:"check_count"`
}

type GroupsSummary struct {
	Total   int `json:"total"`
	Passing int `json:"passing"`
	Failing int `json:"failing"`
	Pending int `json:"pending"`
}

type DashboardResponse struct {
	Project       ProjectSummary `json:"project"`
	GroupsSummary GroupsSummary  `json:"groups_summary"`
	Groups        []GroupSummary `json:"groups"`
	RecentRuns    []RunSummary   `json:"recent_runs"`
}

type RunSummary struct {
	ID          uint      `json:"id"`
	GroupID     uint      `json:"group_id"`
	GroupName   string    `json:"group_name"`
	Status      string    `json:"status"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// ownedProject loads a project, verifying ownership.
func ownedProject(ctx *gin.Context) (models.Project, bool) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Project{}, false
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.Project{}, false
	}

	var project models.Project

	if err := db.DB.Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return models.Project{}, false
	}

	return project, true
}

func CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		Name:           req.Name,
		Description:    req.Description,
		OwnerID:        userID,
		DiscordWebhook: req.DiscordWebhook,
		SlackWebhook:   req.SlackWebhook,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Project created successfully", "project_id": project.ID})
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	if err := db.DB.Where("owner_id = ?", userID).Find(&projects).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	summaries := make([]ProjectSummary, len(projects))

	for i, project := range projects {
		summaries[i] = ProjectSummary{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
		}
	}

	ctx.JSON(http.StatusOK, summaries)
}

func UpdateProject(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	var req UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		project.Name = req.Name
	}

	project.Description = req.Description
	project.DiscordWebhook = req.DiscordWebhook
	project.SlackWebhook = req.SlackWebhook

	if err := db.DB.Save(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project updated successfully", "project_id": project.ID})
}

func DeleteProject(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	if err := db.DB.Delete(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func GetDashboard(ctx *gin.Context) {
	project, ok := ownedProject(ctx)

	if !ok {
		return
	}

	var groups []models.InvariantGroup

	if err := db.DB.Where("project_id = ?", project.ID).Find(&groups).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve groups"})
		return
	}

	summary := GroupsSummary{Total: len(groups)}
	groupSummaries := make([]GroupSummary, 0, len(groups))
	names := make(map[uint]string, len(groups))

	for _, group := range groups {
		names[group.ID] = group.Name

		switch group.LastStatus {
		case types.StatusPass:
			summary.Passing++
		case types.StatusFail:
			summary.Failing++
		default:
			summary.Pending++
		}

		var checkCount int64
		db.DB.Model(&models.Check{}).Where("group_id = ?", group.ID).Count(&checkCount)

		groupSummaries = append(groupSummaries, GroupSummary{
			ID:              group.ID,
			Name:            group.Name,
			Enabled:         group.Enabled,
			IntervalMinutes: group.IntervalMinutes,
			LastStatus:      group.LastStatus,
			LastEvaluatedAt: group.LastEvaluatedAt,
			CheckCount:      checkCount,
		})
	}

	var runs []models.EvaluationRun

	db.DB.Joins("JOIN invariant_groups ON invariant_groups.id = evaluation_runs.group_id").
		Where("invariant_groups.project_id = ?", project.ID).
		Order("evaluation_runs.evaluated_at DESC").
		Limit(10).
		Find(&runs)

	runSummaries := make([]RunSummary, len(runs))

	for i, run := range runs {
		runSummaries[i] = RunSummary{
			ID:          run.ID,
			GroupID:     run.GroupID,
			GroupName:   names[run.GroupID],
			Status:      run.Status,
			EvaluatedAt: run.EvaluatedAt,
		}
	}

	ctx.JSON(http.StatusOK, DashboardResponse{
		Project: ProjectSummary{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
		},
		GroupsSummary: summary,
		Groups:        groupSummaries,
		RecentRuns:    runSummaries,
	})
}
