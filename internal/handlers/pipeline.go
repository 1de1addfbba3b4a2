package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PipelineRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type StageSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	PipelineID uint   `json:"pipeline_id"`
}

type PipelineResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Stages    []StageSummary `json:"stages"`
}

func toPipelineResponse(pipeline models.Pipeline) PipelineResponse {
	stages := make([]StageSummary, 0, len(pipeline.Stages))

	for _, stage := range pipeline.Stages {
		stages = append(stages, StageSummary{
			ID:         stage.ID,
			Name:       stage.Name,
			PipelineID: stage.PipelineID,
		})
	}

	return PipelineResponse{
		ID:        pipeline.ID,
		Name:      pipeline.Name,
		CreatedAt: pipeline.CreatedAt,
		UpdatedAt: pipeline.UpdatedAt,
		Stages:    stages,
	}
}

// preloadStages keeps stages in creation order within each pipeline.
func preloadStages(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Stages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("stages.id ASC")
	})
}

func ListPipelines(ctx *gin.Context) {
	page, pageSize := utils.GetPageParams(ctx)

	var total int64

	if err := db.DB.Model(&models.Pipeline{}).Count(&total).Error; err != nil {
		log.Printf("Failed to count pipelines: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pipelines"})
		return
	}

	var pipelines []models.Pipeline

	err := preloadStages(db.DB).
		Order("created_at DESC, id DESC").
		Offset(utils.PageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&pipelines).Error

	if err != nil {
		log.Printf("Failed to list pipelines: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pipelines"})
		return
	}

	response := make([]PipelineResponse, 0, len(pipelines))

	for _, pipeline := range pipelines {
		response = append(response, toPipelineResponse(pipeline))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": response,
		"meta": utils.NewPageMeta(page, pageSize, total),
	})
}

func GetPipeline(ctx *gin.Context) {
	var pipeline models.Pipeline

	if err := preloadStages(db.DB).First(&pipeline, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Pipeline not found"})
		} else {
			log.Printf("Failed to retrieve pipeline: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pipeline"})
		}
		return
	}

	ctx.JSON(http.StatusOK, toPipelineResponse(pipeline))
}

func CreatePipeline(ctx *gin.Context) {
	var req PipelineRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	pipeline := models.Pipeline{Name: req.Name}

	// The pipeline and its default stages must appear together or not at all.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pipeline).Error; err != nil {
			return err
		}

		for _, stageName := range models.DefaultStageNames {
			stage := models.Stage{Name: stageName, PipelineID: pipeline.ID}

			if err := tx.Create(&stage).Error; err != nil {
				return err
			}

			pipeline.Stages = append(pipeline.Stages, stage)
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to create pipeline: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pipeline"})
		return
	}

	ctx.JSON(http.StatusCreated, toPipelineResponse(pipeline))
}

func UpdatePipeline(ctx *gin.Context) {
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

	var req PipelineRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	pipeline.Name = req.Name

	if err := db.DB.Save(&pipeline).Error; err != nil {
		log.Printf("Failed to update pipeline: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pipeline"})
		return
	}

	if err := preloadStages(db.DB).First(&pipeline, pipeline.ID).Error; err != nil {
		log.Printf("Failed to reload pipeline: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pipeline"})
		return
	}

	ctx.JSON(http.StatusOK, toPipelineResponse(pipeline))
}

func DeletePipeline(ctx *gin.Context) {
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

	// Child stages go with the pipeline, in the same transaction.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pipeline_id = ?", pipeline.ID).Delete(&models.Stage{}).Error; err != nil {
			return err
		}

		return tx.Delete(&pipeline).Error
	})

	if err != nil {
		log.Printf("Failed to delete pipeline: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pipeline"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
