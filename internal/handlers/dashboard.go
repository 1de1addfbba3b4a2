package handlers

import (
	"log"
	"net/http"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/utils"
	"github.com/gin-gonic/gin"
)

type DashboardResponse struct {
	Contacts  int64 `json:"contacts"`
	Pipelines int64 `json:"pipelines"`
	Stages    int64 `json:"stages"`
	Users     int64 `json:"users"`
}

// GetDashboard returns the headline counts for the dashboard page: the
// caller's contacts plus the shared pipeline/stage/user totals.
func GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var response DashboardResponse

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Pipeline{}, &response.Pipelines},
		{&models.Stage{}, &response.Stages},
		{&models.User{}, &response.Users},
	}

	if err := db.DB.Model(&models.Contact{}).Where("owner_id = ?", userID).Count(&response.Contacts).Error; err != nil {
		log.Printf("Failed to count contacts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	for _, count := range counts {
		if err := db.DB.Model(count.model).Count(count.dest).Error; err != nil {
			log.Printf("Failed to count dashboard entities: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
	}

	ctx.JSON(http.StatusOK, response)
}
