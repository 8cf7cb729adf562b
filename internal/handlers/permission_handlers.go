package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"medimart_api/internal/models"
	"medimart_api/internal/reconcile"
)

// PermissionHandler serves groups, permissions and their assignments
type PermissionHandler struct {
	db *gorm.DB
}

func NewPermissionHandler(db *gorm.DB) *PermissionHandler {
	return &PermissionHandler{db: db}
}

type permissionCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *PermissionHandler) CreatePermissionCategory(c echo.Context) error {
	req := new(permissionCategoryRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	category := models.PermissionCategory{Name: req.Name}
	if err := h.db.Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create permission category")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Permission category created successfully", Data: category})
}

func (h *PermissionHandler) ListPermissionCategories(c echo.Context) error {
	var categories []models.PermissionCategory
	if err := h.db.Preload("Permissions").Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch permission categories")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: categories})
}

type permissionRequest struct {
	Name                 string `json:"name" validate:"required"`
	PermissionCategoryID uint   `json:"permission_category_id" validate:"required"`
}

func (h *PermissionHandler) CreatePermission(c echo.Context) error {
	req := new(permissionRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if err := h.db.First(&models.PermissionCategory{}, req.PermissionCategoryID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "permission category"}
	}

	permission := models.Permission{Name: req.Name, PermissionCategoryID: req.PermissionCategoryID}
	if err := h.db.Create(&permission).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create permission")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Permission created successfully", Data: permission})
}

func (h *PermissionHandler) ListPermissions(c echo.Context) error {
	var permissions []models.Permission
	if err := h.db.Find(&permissions).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch permissions")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: permissions})
}

type groupRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *PermissionHandler) CreateGroup(c echo.Context) error {
	req := new(groupRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	group := models.Group{Name: req.Name}
	if err := h.db.Create(&group).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create group")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Group created successfully", Data: group})
}

func (h *PermissionHandler) ListGroups(c echo.Context) error {
	var groups []models.Group
	if err := h.db.Preload("Permissions").Find(&groups).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch groups")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: groups})
}

func (h *PermissionHandler) DeleteGroup(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid group id")
	}

	result := h.db.Delete(&models.Group{}, uint(id))
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete group")
	}
	if result.RowsAffected == 0 {
		return &reconcile.NotFoundError{Resource: "group"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Group deleted successfully"})
}

type groupPermissionRequest struct {
	GroupID      uint `json:"group_id" validate:"required"`
	PermissionID uint `json:"permission_id" validate:"required"`
}

// AssignGroupPermission links a permission to a group
func (h *PermissionHandler) AssignGroupPermission(c echo.Context) error {
	req := new(groupPermissionRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var group models.Group
	if err := h.db.First(&group, req.GroupID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "group"}
	}
	var permission models.Permission
	if err := h.db.First(&permission, req.PermissionID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "permission"}
	}

	if err := h.db.Model(&group).Association("Permissions").Append(&permission); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to assign permission")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Permission assigned to group"})
}

func (h *PermissionHandler) RevokeGroupPermission(c echo.Context) error {
	req := new(groupPermissionRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var group models.Group
	if err := h.db.First(&group, req.GroupID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "group"}
	}

	permission := models.Permission{ID: req.PermissionID}
	if err := h.db.Model(&group).Association("Permissions").Delete(&permission); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revoke permission")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Permission revoked from group"})
}

type userGroupRequest struct {
	UserID  uint `json:"user_id" validate:"required"`
	GroupID uint `json:"group_id" validate:"required"`
}

// AssignUserGroup puts a user into a group
func (h *PermissionHandler) AssignUserGroup(c echo.Context) error {
	req := new(userGroupRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var group models.Group
	if err := h.db.First(&group, req.GroupID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "group"}
	}
	var user models.User
	if err := h.db.First(&user, req.UserID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "user"}
	}

	if err := h.db.Model(&group).Association("Users").Append(&user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to assign user to group")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "User added to group"})
}

func (h *PermissionHandler) RevokeUserGroup(c echo.Context) error {
	req := new(userGroupRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var group models.Group
	if err := h.db.First(&group, req.GroupID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "group"}
	}

	user := models.User{ID: req.UserID}
	if err := h.db.Model(&group).Association("Users").Delete(&user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove user from group")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "User removed from group"})
}

type userPermissionRequest struct {
	UserID       uint `json:"user_id" validate:"required"`
	PermissionID uint `json:"permission_id" validate:"required"`
}

// AssignUserPermission grants a permission directly to a user
func (h *PermissionHandler) AssignUserPermission(c echo.Context) error {
	req := new(userPermissionRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if err := h.db.First(&models.User{}, req.UserID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "user"}
	}
	if err := h.db.First(&models.Permission{}, req.PermissionID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "permission"}
	}

	link := models.UserPermission{UserID: req.UserID, PermissionID: req.PermissionID}
	if err := h.db.Create(&link).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to grant permission")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Permission granted to user", Data: link})
}

func (h *PermissionHandler) RevokeUserPermission(c echo.Context) error {
	req := new(userPermissionRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	result := h.db.Where("user_id = ? AND permission_id = ?", req.UserID, req.PermissionID).
		Delete(&models.UserPermission{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revoke permission")
	}
	if result.RowsAffected == 0 {
		return &reconcile.NotFoundError{Resource: "user permission"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Permission revoked from user"})
}

// ListUserPermissions returns the direct grants of a user
func (h *PermissionHandler) ListUserPermissions(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var grants []models.UserPermission
	err := h.db.Preload("Permission").Where("user_id = ?", userID).Find(&grants).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user permissions")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: grants})
}
