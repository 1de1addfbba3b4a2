package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/types"
	"github.com/funnelbase-dev/funnelbase/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContactRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Phone       string `json:"phone" binding:"required,max=20"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	Website     string `json:"website" binding:"omitempty,max=255"`
	City        string `json:"city" binding:"omitempty,max=100"`
	State       string `json:"state" binding:"omitempty,max=100"`
	Country     string `json:"country" binding:"omitempty,max=100"`
	CompanyName string `json:"company_name" binding:"omitempty,max=255"`
	DealID      *uint  `json:"deal_id"`
}

type ContactResponse struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Phone       string             `json:"phone"`
	Email       string             `json:"email,omitempty"`
	Website     string             `json:"website,omitempty"`
	City        string             `json:"city,omitempty"`
	State       string             `json:"state,omitempty"`
	Country     string             `json:"country,omitempty"`
	CompanyName string             `json:"company_name,omitempty"`
	DealID      *uint              `json:"deal_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Owner       types.UserResponse `json:"owner"`
}

func toContactResponse(contact models.Contact) ContactResponse {
	return ContactResponse{
		ID:          contact.ID,
		Name:        contact.Name,
		Phone:       contact.Phone,
		Email:       contact.Email,
		Website:     contact.Website,
		City:        contact.City,
		State:       contact.State,
		Country:     contact.Country,
		CompanyName: contact.CompanyName,
		DealID:      contact.DealID,
		CreatedAt:   contact.CreatedAt,
		Owner: types.UserResponse{
			ID:    contact.Owner.ID,
			Name:  contact.Owner.Name,
			Email: contact.Owner.Email,
		},
	}
}

func applyContactRequest(contact *models.Contact, req ContactRequest) {
	contact.Name = req.Name
	contact.Phone = req.Phone
	contact.Email = req.Email
	contact.Website = req.Website
	contact.City = req.City
	contact.State = req.State
	contact.Country = req.Country
	contact.CompanyName = req.CompanyName
	contact.DealID = req.DealID
}

func ListContacts(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, pageSize := utils.GetPageParams(ctx)

	var total int64

	if err := db.DB.Model(&models.Contact{}).Where("owner_id = ?", userID).Count(&total).Error; err != nil {
		log.Printf("Failed to count contacts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	var contacts []models.Contact

	err = db.DB.Preload("Owner").
		Where("owner_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(utils.PageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&contacts).Error

	if err != nil {
		log.Printf("Failed to list contacts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	response := make([]ContactResponse, 0, len(contacts))

	for _, contact := range contacts {
		response = append(response, toContactResponse(contact))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": response,
		"meta": utils.NewPageMeta(page, pageSize, total),
	})
}

func GetContact(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var contact models.Contact

	if err := db.DB.Preload("Owner").Where("id = ? AND owner_id = ?", ctx.Param("id"), userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		} else {
			log.Printf("Failed to retrieve contact: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		}
		return
	}

	ctx.JSON(http.StatusOK, toContactResponse(contact))
}

func CreateContact(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ContactRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	contact := models.Contact{OwnerID: currentUser.ID}
	applyContactRequest(&contact, req)

	if err := db.DB.Create(&contact).Error; err != nil {
		log.Printf("Failed to create contact: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	contact.Owner = models.User{Name: currentUser.Name, Email: currentUser.Email}
	contact.Owner.ID = currentUser.ID

	ctx.JSON(http.StatusCreated, toContactResponse(contact))
}

func UpdateContact(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var contact models.Contact

	// Owner-scoped lookup: someone else's contact is indistinguishable from a
	// missing one.
	if err := db.DB.Preload("Owner").Where("id = ? AND owner_id = ?", ctx.Param("id"), userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		} else {
			log.Printf("Failed to retrieve contact: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		}
		return
	}

	var req ContactRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	applyContactRequest(&contact, req)

	if err := db.DB.Save(&contact).Error; err != nil {
		log.Printf("Failed to update contact: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	ctx.JSON(http.StatusOK, toContactResponse(contact))
}

func DeleteContact(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Rejected before any lookup or mutation.
	if !currentUser.HasRole(types.RoleAdmin) && !currentUser.HasPermission(types.PermissionDeleteLeads) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role or permission"})
		return
	}

	var contact models.Contact

	if err := db.DB.Where("id = ? AND owner_id = ?", ctx.Param("id"), currentUser.ID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		} else {
			log.Printf("Failed to retrieve contact: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		}
		return
	}

	if err := db.DB.Delete(&contact).Error; err != nil {
		log.Printf("Failed to delete contact: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
