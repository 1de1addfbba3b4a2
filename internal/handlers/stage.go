package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StageRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type StageResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	PipelineID   uint   `json:"pipeline_id"`
	PipelineName string `json:"pipeline_name"`
}

func ListStages(ctx *gin.Context) {
	page, pageSize := utils.GetPageParams(ctx)

	var total int64

	if err := db.DB.Model(&models.Stage{}).Count(&total).Error; err != nil {
		log.Printf("Failed to count stages: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stages"})
		return
	}

	var stages []models.Stage

	err := db.DB.Preload("Pipeline").
		Order("created_at DESC, id DESC").
		Offset(utils.PageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&stages).Error

	if err != nil {
		log.Printf("Failed to list stages: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stages"})
		return
	}

	response := make([]StageResponse, 0, len(stages))

	for _, stage := range stages {
		response = append(response, StageResponse{
			ID:           stage.ID,
			Name:         stage.Name,
			PipelineID:   stage.PipelineID,
			PipelineName: stage.Pipeline.Name,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": response,
		"meta": utils.NewPageMeta(page, pageSize, total),
	})
}

func CreateStage(ctx *gin.Context) {
	var pipeline models.Pipeline

	if err := db.DB.First(&pipeline, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Pipeline not found"})
		} else {
			log.Printf("Failed to retrieve pipeline: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pipeline"})
		}
		return
	}

	var req StageRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	stage := models.Stage{Name: req.Name, PipelineID: pipeline.ID}

	if err := db.DB.Create(&stage).Error; err != nil {
		log.Printf("Failed to create stage: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stage"})
		return
	}

	ctx.JSON(http.StatusCreated, StageResponse{
		ID:           stage.ID,
		Name:         stage.Name,
		PipelineID:   stage.PipelineID,
		PipelineName: pipeline.Name,
	})
}

func UpdateStage(ctx *gin.Context) {
	var stage models.Stage

	if err := db.DB.Preload("Pipeline").First(&stage, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Stage not found"})
		} else {
			log.Printf("Failed to retrieve stage: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stage"})
		}
		return
	}

	var req StageRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	stage.Name = req.Name

	if err := db.DB.Save(&stage).Error; err != nil {
		log.Printf("Failed to update stage: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stage"})
		return
	}

	ctx.JSON(http.StatusOK, StageResponse{
		ID:           stage.ID,
		Name:         stage.Name,
		PipelineID:   stage.PipelineID,
		PipelineName: stage.Pipeline.Name,
	})
}

// DeleteStage removes a single stage. Sibling stages and the parent pipeline
// are untouched.
func DeleteStage(ctx *gin.Context) {
	var stage models.Stage

	if err := db.DB.First(&stage, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Stage not found"})
		} else {
			log.Printf("Failed to retrieve stage: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stage"})
		}
		return
	}

	if err := db.DB.Delete(&stage).Error; err != nil {
		log.Printf("Failed to delete stage: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stage"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
