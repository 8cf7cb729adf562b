package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"medimart_api/internal/middleware"
	"medimart_api/internal/models"
	"medimart_api/internal/services"
)

// DashboardHandler aggregates appointment and earnings stats for admins
type DashboardHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewDashboardHandler(db *gorm.DB, cache *services.RedisCache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: cache}
}

type dashboardStats struct {
	Appointments appointmentStats `json:"appointments"`
	Earnings     earningsStats    `json:"earnings"`
}

type appointmentStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Scheduled int64 `json:"scheduled"`
	Cancelled int64 `json:"cancelled"`
	Completed int64 `json:"completed"`
}

type earningsStats struct {
	CurrentMonth float64 `json:"current_month"`
	LastMonth    float64 `json:"last_month"`
}

const dashboardCacheTTL = 5 * time.Minute

func (h *DashboardHandler) GetStats(c echo.Context) error {
	userID := getUintFromContext(c, middleware.ContextUserID)
	key := fmt.Sprintf("dashboard:stats:%d", userID)

	var stats dashboardStats
	var err error
	if h.cache != nil {
		stats, err = services.GetOrSet(h.cache, c.Request().Context(), key, dashboardCacheTTL, func() (dashboardStats, error) {
			return h.computeStats()
		})
	} else {
		stats, err = h.computeStats()
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute dashboard stats")
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

func (h *DashboardHandler) computeStats() (dashboardStats, error) {
	var stats dashboardStats

	if err := h.db.Model(&models.Appointment{}).Count(&stats.Appointments.Total).Error; err != nil {
		return stats, err
	}

	counts := map[models.AppointmentStatus]*int64{
		models.AppointmentStatusPending:   &stats.Appointments.Pending,
		models.AppointmentStatusScheduled: &stats.Appointments.Scheduled,
		models.AppointmentStatusCancelled: &stats.Appointments.Cancelled,
		models.AppointmentStatusCompleted: &stats.Appointments.Completed,
	}
	for status, dest := range counts {
		err := h.db.Model(&models.Appointment{}).Where("status = ?", status).Count(dest).Error
		if err != nil {
			return stats, err
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	var err error
	stats.Earnings.CurrentMonth, err = h.earningsBetween(monthStart, now)
	if err != nil {
		return stats, err
	}
	stats.Earnings.LastMonth, err = h.earningsBetween(lastMonthStart, monthStart)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// earningsBetween sums settled ledger amounts in [from, to)
func (h *DashboardHandler) earningsBetween(from, to time.Time) (float64, error) {
	var total float64
	err := h.db.Model(&models.Payment{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", models.PaymentStatusPaid, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
