package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OnboardingRequest struct {
	Step      int                    `json:"step" binding:"required,min=1"`
	Completed bool                   `json:"completed"`
	Data      map[string]interface{} `json:"data"`
}

type OnboardingResponse struct {
	Step      int                    `json:"step"`
	Completed bool                   `json:"completed"`
	Data      map[string]interface{} `json:"data"`
}

func toOnboardingResponse(profile models.OnboardingProfile) OnboardingResponse {
	data := make(map[string]interface{})

	if len(profile.Data) > 0 {
		if err := json.Unmarshal(profile.Data, &data); err != nil {
			log.Printf("Failed to decode onboarding data: %v", err)
		}
	}

	return OnboardingResponse{
		Step:      profile.Step,
		Completed: profile.Completed,
		Data:      data,
	}
}

// GetOnboarding returns the caller's onboarding progress, starting a fresh
// profile at step 1 when none exists yet.
func GetOnboarding(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var profile models.OnboardingProfile

	if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusOK, OnboardingResponse{Step: 1, Data: map[string]interface{}{}})
			return
		}
		log.Printf("Failed to retrieve onboarding profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve onboarding profile"})
		return
	}

	ctx.JSON(http.StatusOK, toOnboardingResponse(profile))
}

// SaveOnboarding upserts the caller's onboarding step and accumulated form
// payload.
func SaveOnboarding(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req OnboardingRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	data, err := json.Marshal(req.Data)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"data": "Invalid data payload"}})
		return
	}

	var profile models.OnboardingProfile

	err = db.DB.Where("user_id = ?", userID).First(&profile).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to retrieve onboarding profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve onboarding profile"})
		return
	}

	profile.UserID = userID
	profile.Step = req.Step
	profile.Completed = req.Completed
	profile.Data = data

	if err := db.DB.Save(&profile).Error; err != nil {
		log.Printf("Failed to save onboarding profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save onboarding profile"})
		return
	}

	ctx.JSON(http.StatusOK, toOnboardingResponse(profile))
}
