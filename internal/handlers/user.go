package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	Roles    []uint `json:"roles"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
	Roles []uint `json:"roles"`
}

type AssignRolesRequest struct {
	Roles []uint `json:"roles"`
}

type ManagedUserResponse struct {
	ID    uint     `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func toManagedUserResponse(user models.User) ManagedUserResponse {
	roles := make([]string, 0, len(user.Roles))

	for _, role := range user.Roles {
		roles = append(roles, role.Name)
	}

	return ManagedUserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Roles: roles,
	}
}

// resolveRoles loads the role rows for the given ids, failing when any id is
// unknown.
func resolveRoles(ids []uint) ([]models.Role, error) {
	roles := make([]models.Role, 0, len(ids))

	if len(ids) == 0 {
		return roles, nil
	}

	if err := db.DB.Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, err
	}

	if len(roles) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}

	return roles, nil
}

// ListUsers serves the user management page payload: every user with their
// roles, plus the role catalog for the assignment form.
func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Preload("Roles").Order("id ASC").Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	var roles []models.Role

	if err := db.DB.Order("id ASC").Find(&roles).Error; err != nil {
		log.Printf("Failed to list roles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve roles"})
		return
	}

	userResponses := make([]ManagedUserResponse, 0, len(users))

	for _, user := range users {
		userResponses = append(userResponses, toManagedUserResponse(user))
	}

	roleResponses := make([]RoleResponse, 0, len(roles))

	for _, role := range roles {
		roleResponses = append(roleResponses, RoleResponse{ID: role.ID, Name: role.Name, Permissions: []PermissionResponse{}})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": userResponses,
		"roles": roleResponses,
	})
}

func CreateManagedUser(ctx *gin.Context) {
	var req CreateUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := db.DB.Where("email = ?", req.Email).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": "Email already exists"}})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	roles, err := resolveRoles(req.Roles)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"roles": "One or more roles do not exist"}})
		} else {
			log.Printf("Failed to resolve roles: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		// The email check above races with concurrent creates; the unique
		// index is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": "Email already exists"}})
			return
		}

		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := replaceAssociation(&user, "Roles", roles, len(roles)); err != nil {
		log.Printf("Failed to assign roles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign roles"})
		return
	}

	user.Roles = roles

	ctx.JSON(http.StatusCreated, toManagedUserResponse(user))
}

func UpdateManagedUser(ctx *gin.Context) {
	var user models.User

	if err := db.DB.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to retrieve user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	var req UpdateUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := db.DB.Where("email = ? AND id != ?", req.Email, user.ID).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": "Email already exists"}})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing email: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	roles, err := resolveRoles(req.Roles)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"roles": "One or more roles do not exist"}})
		} else {
			log.Printf("Failed to resolve roles: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	user.Name = req.Name
	user.Email = req.Email

	if err := db.DB.Save(&user).Error; err != nil {
		log.Printf("Failed to update user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	// Resync to exactly the given set; an empty list clears all roles.
	if err := replaceAssociation(&user, "Roles", roles, len(roles)); err != nil {
		log.Printf("Failed to sync roles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync roles"})
		return
	}

	user.Roles = roles

	ctx.JSON(http.StatusOK, toManagedUserResponse(user))
}

func AssignUserRoles(ctx *gin.Context) {
	var user models.User

	if err := db.DB.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to retrieve user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	var req AssignRolesRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	roles, err := resolveRoles(req.Roles)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"roles": "One or more roles do not exist"}})
		} else {
			log.Printf("Failed to resolve roles: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if err := replaceAssociation(&user, "Roles", roles, len(roles)); err != nil {
		log.Printf("Failed to sync roles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync roles"})
		return
	}

	user.Roles = roles

	ctx.JSON(http.StatusOK, toManagedUserResponse(user))
}

func DeleteManagedUser(ctx *gin.Context) {
	var user models.User

	if err := db.DB.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to retrieve user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	// Owned contacts, role assignments and the onboarding profile go with the
	// user, in the same transaction.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", user.ID).Delete(&models.Contact{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.OnboardingProfile{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})

	if err != nil {
		log.Printf("Failed to delete user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
