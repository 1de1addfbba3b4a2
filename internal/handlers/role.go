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

type RoleRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Permissions []uint `json:"permissions"`
}

type PermissionResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RoleResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Permissions []PermissionResponse `json:"permissions"`
}

func toRoleResponse(role models.Role) RoleResponse {
	permissions := make([]PermissionResponse, 0, len(role.Permissions))

	for _, permission := range role.Permissions {
		permissions = append(permissions, PermissionResponse{
			ID:   permission.ID,
			Name: permission.Name,
		})
	}

	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Permissions: permissions,
	}
}

// replaceAssociation resyncs a many2many association to exactly the given
// set. An empty set clears the association.
func replaceAssociation(model interface{}, name string, values interface{}, count int) error {
	association := db.DB.Model(model).Association(name)

	if count == 0 {
		return association.Clear()
	}

	return association.Replace(values)
}

// resolvePermissions loads the permission rows for the given ids, failing when
// any id is unknown.
func resolvePermissions(ids []uint) ([]models.Permission, error) {
	permissions := make([]models.Permission, 0, len(ids))

	if len(ids) == 0 {
		return permissions, nil
	}

	if err := db.DB.Where("id IN ?", ids).Find(&permissions).Error; err != nil {
		return nil, err
	}

	if len(permissions) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}

	return permissions, nil
}

// ListRolesPermissions serves the roles-permissions management page payload:
// every role with its permission set, plus the full permission catalog.
func ListRolesPermissions(ctx *gin.Context) {
	var roles []models.Role

	if err := db.DB.Preload("Permissions").Order("id ASC").Find(&roles).Error; err != nil {
		log.Printf("Failed to list roles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve roles"})
		return
	}

	var permissions []models.Permission

	if err := db.DB.Order("id ASC").Find(&permissions).Error; err != nil {
		log.Printf("Failed to list permissions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve permissions"})
		return
	}

	roleResponses := make([]RoleResponse, 0, len(roles))

	for _, role := range roles {
		roleResponses = append(roleResponses, toRoleResponse(role))
	}

	permissionResponses := make([]PermissionResponse, 0, len(permissions))

	for _, permission := range permissions {
		permissionResponses = append(permissionResponses, PermissionResponse{
			ID:   permission.ID,
			Name: permission.Name,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"roles":       roleResponses,
		"permissions": permissionResponses,
	})
}

func CreateRole(ctx *gin.Context) {
	var req RoleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	var existing models.Role

	err := db.DB.Where("name = ?", req.Name).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"name": "Role name already exists"}})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking role name: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	permissions, err := resolvePermissions(req.Permissions)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"permissions": "One or more permissions do not exist"}})
		} else {
			log.Printf("Failed to resolve permissions: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	role := models.Role{Name: req.Name}

	if err := db.DB.Create(&role).Error; err != nil {
		// The name check above races with concurrent creates; the unique
		// index is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"name": "Role name already exists"}})
			return
		}

		log.Printf("Failed to create role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}

	if err := replaceAssociation(&role, "Permissions", permissions, len(permissions)); err != nil {
		log.Printf("Failed to assign permissions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign permissions"})
		return
	}

	role.Permissions = permissions

	ctx.JSON(http.StatusCreated, toRoleResponse(role))
}

func UpdateRole(ctx *gin.Context) {
	var role models.Role

	if err := db.DB.First(&role, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		} else {
			log.Printf("Failed to retrieve role: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve role"})
		}
		return
	}

	var req RoleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	var existing models.Role

	err := db.DB.Where("name = ? AND id != ?", req.Name, role.ID).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"name": "Role name already exists"}})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking role name: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	permissions, err := resolvePermissions(req.Permissions)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"permissions": "One or more permissions do not exist"}})
		} else {
			log.Printf("Failed to resolve permissions: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	role.Name = req.Name

	if err := db.DB.Save(&role).Error; err != nil {
		log.Printf("Failed to update role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	// Resync to exactly the given set.
	if err := replaceAssociation(&role, "Permissions", permissions, len(permissions)); err != nil {
		log.Printf("Failed to sync permissions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync permissions"})
		return
	}

	role.Permissions = permissions

	ctx.JSON(http.StatusOK, toRoleResponse(role))
}

func DeleteRole(ctx *gin.Context) {
	var role models.Role

	if err := db.DB.First(&role, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		} else {
			log.Printf("Failed to retrieve role: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve role"})
		}
		return
	}

	// Association rows go first so users holding the role lose it cleanly.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return err
		}

		if err := tx.Model(&role).Association("Users").Clear(); err != nil {
			return err
		}

		return tx.Delete(&role).Error
	})

	if err != nil {
		log.Printf("Failed to delete role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
