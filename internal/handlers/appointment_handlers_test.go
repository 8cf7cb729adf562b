package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medimart_api/internal/middleware"
	"medimart_api/internal/models"
	"medimart_api/internal/reconcile"
)

const testSecret = "handler-test-secret"

type stubGateway struct{ calls int }

func (g *stubGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*reconcile.GatewayOrder, error) {
	g.calls++
	return &reconcile.GatewayOrder{
		ID:       fmt.Sprintf("order_stub%d", g.calls),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB, *reconcile.Engine) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.ShippingAddress{},
		&models.GatewayCallback{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	engine := reconcile.NewEngine(db, &stubGateway{}, testSecret)
	resolver := reconcile.NewResolver(db)

	e := echo.New()
	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = middleware.CustomErrorHandler

	// stand-in for RequireAuth
	asPatient := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextUserID, uint(1))
			c.Set(middleware.ContextUserRole, models.RolePatient)
			return next(c)
		}
	}

	h := NewAppointmentHandler(db, engine, resolver)
	e.POST("/api/appointment", h.CreateAppointment, asPatient)
	e.POST("/api/appointment/verify", h.VerifyAppointment, asPatient)

	return e, db, engine
}

func postJSON(t *testing.T, e *echo.Echo, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createTestAppointment(t *testing.T, e *echo.Echo) (payableID uint, gatewayOrderID string) {
	t.Helper()
	rec := postJSON(t, e, "/api/appointment", map[string]interface{}{
		"doctor_id":         2,
		"clinic_id":         3,
		"date":              "2026-09-15",
		"time":              "10:30",
		"name":              "Test Patient",
		"location":          "Test Clinic",
		"consultation_type": "in-person",
		"health_concern":    "checkup",
		"fee":               500,
		"payment_method":    "GATEWAY",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Payable struct {
			ID uint `json:"id"`
		} `json:"payable"`
		GatewayOrder struct {
			ID string `json:"id"`
		} `json:"gatewayOrder"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if body.Payable.ID == 0 || body.GatewayOrder.ID == "" {
		t.Fatalf("create response missing ids: %s", rec.Body.String())
	}
	return body.Payable.ID, body.GatewayOrder.ID
}

func TestVerifyEndpointHappyPath(t *testing.T) {
	e, db, _ := newTestServer(t)
	payableID, orderID := createTestAppointment(t, e)

	paymentID := "pay_endpoint1"
	rec := postJSON(t, e, "/api/appointment/verify", map[string]interface{}{
		"payable_id":         payableID,
		"gateway_order_id":   orderID,
		"gateway_payment_id": paymentID,
		"gateway_signature":  reconcile.Signature(orderID, paymentID, testSecret),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal verify response: %v", err)
	}
	if !body.Success {
		t.Errorf("success = false: %s", rec.Body.String())
	}

	var appt models.Appointment
	if err := db.First(&appt, payableID).Error; err != nil {
		t.Fatalf("appointment lookup: %v", err)
	}
	if appt.Status != models.AppointmentStatusScheduled {
		t.Errorf("appointment status = %s, want scheduled", appt.Status)
	}
}

func TestVerifyEndpointRejectsBadSignature(t *testing.T) {
	e, db, _ := newTestServer(t)
	payableID, orderID := createTestAppointment(t, e)

	rec := postJSON(t, e, "/api/appointment/verify", map[string]interface{}{
		"payable_id":         payableID,
		"gateway_order_id":   orderID,
		"gateway_payment_id": "pay_endpoint2",
		"gateway_signature":  reconcile.Signature(orderID, "pay_other", testSecret),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("verify status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid signature") {
		t.Errorf("response missing invalid-signature marker: %s", rec.Body.String())
	}

	var ledger models.Payment
	if err := db.Where("payable_id = ?", payableID).First(&ledger).Error; err != nil {
		t.Fatalf("ledger lookup: %v", err)
	}
	if ledger.Status != models.PaymentStatusFailed {
		t.Errorf("ledger status = %s, want FAILED", ledger.Status)
	}
}

func TestVerifyEndpointValidatesInput(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := postJSON(t, e, "/api/appointment/verify", map[string]interface{}{
		"payable_id": 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
}
