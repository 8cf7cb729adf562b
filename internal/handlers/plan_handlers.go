package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"medimart_api/internal/models"
	"medimart_api/internal/reconcile"
)

type PlanHandler struct {
	db *gorm.DB
}

func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

// planView decorates a plan with its computed next renewal date
type planView struct {
	models.Plan
	NextRenewal string `json:"next_renewal"`
}

func (h *PlanHandler) ListPlans(c echo.Context) error {
	query := h.db.Model(&models.Plan{})
	if userType := c.QueryParam("user_type"); userType != "" {
		query = query.Where("user_type = ?", userType)
	}

	var plans []models.Plan
	if err := query.Find(&plans).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch plans")
	}

	views := make([]planView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, planView{Plan: plan, NextRenewal: plan.NextRenewal().Format("2006-01-02")})
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: views})
}

func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	var plan models.Plan
	if err := h.db.First(&plan, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "plan"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: planView{Plan: plan, NextRenewal: plan.NextRenewal().Format("2006-01-02")}})
}

type planRequest struct {
	UserType        string  `json:"user_type" validate:"required,oneof=DOCTOR CLINIC"`
	Name            string  `json:"name" validate:"required"`
	Price           float64 `json:"price" validate:"gte=0"`
	Currency        string  `json:"currency"`
	RenewalInterval *string `json:"renewal_interval"`
}

// CreatePlan adds a subscription tier (admin only, enforced by routing)
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	req := new(planRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	plan := models.Plan{
		UserType:        models.OrderableType(req.UserType),
		Name:            req.Name,
		Price:           req.Price,
		Currency:        currency,
		StartDate:       time.Now(),
		RenewalInterval: req.RenewalInterval,
	}
	if err := h.db.Create(&plan).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create plan")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Plan created successfully", Data: plan})
}
