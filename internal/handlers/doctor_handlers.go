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

type DoctorHandler struct {
	db *gorm.DB
}

func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{db: db}
}

type timingRequest struct {
	Time string `json:"time" validate:"required"`
	Slot bool   `json:"slot"`
}

type workingDayRequest struct {
	Day  string `json:"day" validate:"required"`
	Slot bool   `json:"slot"`
}

type doctorProfileRequest struct {
	Specialization string              `json:"specialization" validate:"required"`
	Age            int                 `json:"age" validate:"required,gt=0"`
	Gender         string              `json:"gender" validate:"required"`
	About          string              `json:"about" validate:"required"`
	AppointmentFee float64             `json:"appointment_fee" validate:"required,gt=0"`
	ClinicID       *uint               `json:"clinic_id"`
	Timings        []timingRequest     `json:"timings" validate:"omitempty,dive"`
	WorkingDays    []workingDayRequest `json:"working_days" validate:"omitempty,dive"`
}

// CreateProfile creates the doctor profile for the authenticated
// account, together with its timings and working days.
func (h *DoctorHandler) CreateProfile(c echo.Context) error {
	req := new(doctorProfileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	var count int64
	h.db.Model(&models.Doctor{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Doctor profile already exists")
	}

	doctor := models.Doctor{
		UserID:         userID,
		Specialization: req.Specialization,
		Age:            req.Age,
		Gender:         req.Gender,
		About:          req.About,
		AppointmentFee: req.AppointmentFee,
		ClinicID:       req.ClinicID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doctor).Error; err != nil {
			return err
		}
		return replaceSchedule(tx, userID, req.Timings, req.WorkingDays)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create doctor profile")
	}

	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Doctor profile created successfully", Data: doctor})
}

// UpdateProfile replaces the doctor profile and schedule of the
// authenticated account.
func (h *DoctorHandler) UpdateProfile(c echo.Context) error {
	req := new(doctorProfileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	var doctor models.Doctor
	if err := h.db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "doctor"}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"specialization":  req.Specialization,
			"age":             req.Age,
			"gender":          req.Gender,
			"about":           req.About,
			"appointment_fee": req.AppointmentFee,
			"clinic_id":       req.ClinicID,
		}
		if err := tx.Model(&doctor).Updates(updates).Error; err != nil {
			return err
		}
		return replaceSchedule(tx, userID, req.Timings, req.WorkingDays)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update doctor profile")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: "Doctor profile updated successfully"})
}

// ListDoctors returns doctor profiles with optional filters
func (h *DoctorHandler) ListDoctors(c echo.Context) error {
	query := h.db.Model(&models.Doctor{}).Preload("User").Preload("Timings").Preload("WorkingDays")

	if spec := c.QueryParam("specialization"); spec != "" {
		query = query.Where("specialization = ?", spec)
	}
	if clinic := c.QueryParam("clinic_id"); clinic != "" {
		query = query.Where("clinic_id = ?", clinic)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch doctors")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: doctors})
}

func (h *DoctorHandler) GetDoctor(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	var doctor models.Doctor
	err = h.db.Preload("User").Preload("Timings").Preload("WorkingDays").First(&doctor, uint(id)).Error
	if err != nil {
		return &reconcile.NotFoundError{Resource: "doctor"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: doctor})
}

// GetAvailability returns the open slots of a doctor
func (h *DoctorHandler) GetAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	var doctor models.Doctor
	if err := h.db.First(&doctor, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "doctor"}
	}

	var timings []models.Timing
	err = h.db.Where("user_id = ? AND slot = ?", doctor.UserID, true).Find(&timings).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch availability")
	}

	var days []models.WorkingDay
	err = h.db.Where("user_id = ? AND slot = ?", doctor.UserID, true).Find(&days).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch availability")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: map[string]interface{}{
		"timings":      timings,
		"working_days": days,
	}})
}

// replaceSchedule swaps the full set of timings and working days for a
// doctor. Passing empty slices leaves the existing schedule untouched.
func replaceSchedule(tx *gorm.DB, userID uint, timings []timingRequest, days []workingDayRequest) error {
	if len(timings) > 0 {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Timing{}).Error; err != nil {
			return err
		}
		for _, t := range timings {
			if err := tx.Create(&models.Timing{UserID: userID, Time: t.Time, Slot: t.Slot}).Error; err != nil {
				return err
			}
		}
	}
	if len(days) > 0 {
		if err := tx.Where("user_id = ?", userID).Delete(&models.WorkingDay{}).Error; err != nil {
			return err
		}
		for _, d := range days {
			if err := tx.Create(&models.WorkingDay{UserID: userID, Day: d.Day, Slot: d.Slot}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
