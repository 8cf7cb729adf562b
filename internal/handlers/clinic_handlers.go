package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"medimart_api/internal/middleware"
	"medimart_api/internal/models"
	"medimart_api/internal/reconcile"
)

type ClinicHandler struct {
	db *gorm.DB
}

func NewClinicHandler(db *gorm.DB) *ClinicHandler {
	return &ClinicHandler{db: db}
}

type clinicProfileRequest struct {
	Overview string `json:"overview" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
}

// CreateProfile creates the clinic profile for the authenticated account
func (h *ClinicHandler) CreateProfile(c echo.Context) error {
	req := new(clinicProfileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	var count int64
	h.db.Model(&models.Clinic{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Clinic profile already exists")
	}

	clinic := models.Clinic{
		UserID:   userID,
		Overview: req.Overview,
		City:     req.City,
		State:    req.State,
	}
	if err := h.db.Create(&clinic).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create clinic profile")
	}

	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Clinic created successfully", Data: clinic})
}

func (h *ClinicHandler) UpdateProfile(c echo.Context) error {
	req := new(clinicProfileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	var clinic models.Clinic
	if err := h.db.Where("user_id = ?", userID).First(&clinic).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "clinic"}
	}

	updates := map[string]interface{}{"overview": req.Overview, "city": req.City, "state": req.State}
	if err := h.db.Model(&clinic).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update clinic profile")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "Clinic updated successfully"})
}

func (h *ClinicHandler) ListClinics(c echo.Context) error {
	query := h.db.Model(&models.Clinic{}).Preload("User")
	if city := c.QueryParam("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var clinics []models.Clinic
	if err := query.Find(&clinics).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch clinics")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: clinics})
}

func (h *ClinicHandler) GetClinic(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}

	var clinic models.Clinic
	if err := h.db.Preload("User").Preload("Doctors").First(&clinic, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "clinic"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: clinic})
}

func (h *ClinicHandler) DeleteClinic(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}

	var clinic models.Clinic
	if err := h.db.First(&clinic, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "clinic"}
	}
	if err := h.db.Delete(&clinic).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete clinic")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Clinic deleted successfully"})
}
