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

type AppointmentHandler struct {
	db       *gorm.DB
	engine   *reconcile.Engine
	resolver *reconcile.Resolver
}

func NewAppointmentHandler(db *gorm.DB, engine *reconcile.Engine, resolver *reconcile.Resolver) *AppointmentHandler {
	return &AppointmentHandler{db: db, engine: engine, resolver: resolver}
}

type createAppointmentRequest struct {
	DoctorID         uint    `json:"doctor_id" validate:"required"`
	ClinicID         uint    `json:"clinic_id" validate:"required"`
	Date             string  `json:"date" validate:"required"`
	Time             string  `json:"time" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	Location         string  `json:"location" validate:"required"`
	ConsultationType string  `json:"consultation_type" validate:"required"`
	HealthConcern    string  `json:"health_concern" validate:"required"`
	Fee              float64 `json:"fee" validate:"required,gt=0"`
	PaymentMethod    string  `json:"payment_method" validate:"required,oneof=GATEWAY CASH"`
}

// CreateAppointment books an appointment and opens its payment attempt
// in one transaction.
func (h *AppointmentHandler) CreateAppointment(c echo.Context) error {
	req := new(createAppointmentRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	patientID := getUintFromContext(c, middleware.ContextUserID)

	resolved, err := h.resolver.ResolveAppointment(reconcile.AppointmentInput{
		PatientID:        patientID,
		DoctorID:         req.DoctorID,
		ClinicID:         req.ClinicID,
		Date:             req.Date,
		Time:             req.Time,
		Name:             req.Name,
		Location:         req.Location,
		ConsultationType: req.ConsultationType,
		HealthConcern:    req.HealthConcern,
		Fee:              req.Fee,
	})
	if err != nil {
		return err
	}

	result, err := h.engine.Create(c.Request().Context(), resolved, models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "Appointment created successfully",
		"payable":      result.Payable,
		"ledgerEntry":  result.Ledger,
		"gatewayOrder": result.GatewayOrder,
	})
}

type verifyAppointmentRequest struct {
	PayableID        uint   `json:"payable_id" validate:"required"`
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	GatewaySignature string `json:"gateway_signature" validate:"required"`
}

// VerifyAppointment consumes the gateway confirmation and finalizes
// ledger and appointment together.
func (h *AppointmentHandler) VerifyAppointment(c echo.Context) error {
	req := new(verifyAppointmentRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	payableID, err := h.engine.Verify(c.Request().Context(), &reconcile.VerifyRequest{
		PayableID:        req.PayableID,
		PayableType:      models.PayableTypeAppointment,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
		UserID:           getUintFromContext(c, middleware.ContextUserID),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Payment verified successfully",
		Data:    payableID,
	})
}

// ListAppointments returns appointments, optionally filtered by
// patient, doctor or status.
func (h *AppointmentHandler) ListAppointments(c echo.Context) error {
	query := h.db.Model(&models.Appointment{})

	if patient := c.QueryParam("patient_id"); patient != "" {
		query = query.Where("patient_id = ?", patient)
	}
	if doctor := c.QueryParam("doctor_id"); doctor != "" {
		query = query.Where("doctor_id = ?", doctor)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("date desc, time desc").Find(&appointments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: appointments})
}

func (h *AppointmentHandler) GetAppointment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var appointment models.Appointment
	if err := h.db.First(&appointment, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "appointment"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: appointment})
}

type updateAppointmentRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status" validate:"omitempty,oneof=cancelled completed"`
}

// UpdateAppointment reschedules or closes an appointment. The
// pending/scheduled transition belongs to the reconciliation engine and
// cannot be set here.
func (h *AppointmentHandler) UpdateAppointment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	req := new(updateAppointmentRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var appointment models.Appointment
	if err := h.db.First(&appointment, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "appointment"}
	}

	updates := map[string]interface{}{}
	if req.Date != "" {
		updates["date"] = req.Date
	}
	if req.Time != "" {
		updates["time"] = req.Time
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if len(updates) > 0 {
		if err := h.db.Model(&appointment).Updates(updates).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update appointment")
		}
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "Appointment updated successfully", Data: appointment})
}

// DeleteAppointment removes an appointment unless its payment attempt
// is still open or captured.
func (h *AppointmentHandler) DeleteAppointment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	if err := h.engine.Delete(c.Request().Context(), models.PayableTypeAppointment, uint(id)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Appointment deleted successfully"})
}
