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

type AddressHandler struct {
	db *gorm.DB
}

func NewAddressHandler(db *gorm.DB) *AddressHandler {
	return &AddressHandler{db: db}
}

type addressRequest struct {
	Name      string   `json:"name" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	req := new(addressRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	location := models.Location{
		UserID:    getUintFromContext(c, middleware.ContextUserID),
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.db.Create(&location).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create address")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Address created successfully", Data: location})
}

func (h *AddressHandler) ListAddresses(c echo.Context) error {
	userID := getUintFromContext(c, middleware.ContextUserID)

	var locations []models.Location
	if err := h.db.Where("user_id = ?", userID).Find(&locations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch addresses")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: locations})
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	req := new(addressRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	var location models.Location
	if err := h.db.Where("id = ? AND user_id = ?", uint(id), userID).First(&location).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "address"}
	}

	updates := map[string]interface{}{"name": req.Name, "latitude": req.Latitude, "longitude": req.Longitude}
	if err := h.db.Model(&location).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update address")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Address updated successfully", Data: location})
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	result := h.db.Where("id = ? AND user_id = ?", uint(id), userID).Delete(&models.Location{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete address")
	}
	if result.RowsAffected == 0 {
		return &reconcile.NotFoundError{Resource: "address"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Address deleted successfully"})
}
