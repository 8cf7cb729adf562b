package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medimart_api/internal/models"
)

const testSecret = "test-webhook-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// a second connection to :memory: would be a different database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Product{},
		&models.Plan{},
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
	return db
}

type fakeGateway struct {
	fail  bool
	calls int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("connection refused")
	}
	return &GatewayOrder{
		ID:       fmt.Sprintf("order_fake%d", g.calls),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeGateway, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	gw := &fakeGateway{}
	return NewEngine(db, gw, testSecret), gw, db
}

func resolvedAppointment(patientID uint, fee float64) *ResolvedPayable {
	return &ResolvedPayable{
		Kind:     models.PayableTypeAppointment,
		OwnerID:  patientID,
		Amount:   fee,
		Currency: "INR",
		Appointment: &models.Appointment{
			PatientID:        patientID,
			DoctorID:         2,
			ClinicID:         3,
			Date:             "2026-09-15",
			Time:             "10:30",
			Name:             "Test Patient",
			Location:         "Test Clinic",
			ConsultationType: "in-person",
			HealthConcern:    "checkup",
		},
	}
}

func TestCreateAppointmentMintsGatewayOrder(t *testing.T) {
	engine, gw, db := newTestEngine(t)

	result, err := engine.Create(context.Background(), resolvedAppointment(1, 500), models.PaymentMethodGateway)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if gw.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.calls)
	}
	if result.GatewayOrder == nil {
		t.Fatal("expected a gateway order")
	}
	if result.GatewayOrder.Amount != 50000 {
		t.Errorf("gateway amount = %d minor units, want 50000", result.GatewayOrder.Amount)
	}

	var appt models.Appointment
	if err := db.First(&appt, result.PayableID).Error; err != nil {
		t.Fatalf("appointment not persisted: %v", err)
	}
	if appt.Status != models.AppointmentStatusPending {
		t.Errorf("appointment status = %s, want pending", appt.Status)
	}

	if result.Ledger.Status != models.PaymentStatusPending {
		t.Errorf("ledger status = %s, want PENDING", result.Ledger.Status)
	}
	if result.Ledger.GatewayOrderID == nil || *result.Ledger.GatewayOrderID != result.GatewayOrder.ID {
		t.Error("ledger does not reference the minted gateway order")
	}
	if result.Ledger.Amount != 500 || result.Ledger.Currency != "INR" {
		t.Errorf("ledger amount/currency = %v/%s", result.Ledger.Amount, result.Ledger.Currency)
	}
}

func TestCreateGatewayFailureLeavesNothingBehind(t *testing.T) {
	engine, gw, db := newTestEngine(t)
	gw.fail = true

	_, err := engine.Create(context.Background(), resolvedAppointment(1, 500), models.PaymentMethodGateway)
	var gwErr *GatewayUnavailableError
	if !errors.As(err, &gwErr) {
		t.Fatalf("err = %v, want GatewayUnavailableError", err)
	}

	var appointments, payments int64
	db.Model(&models.Appointment{}).Count(&appointments)
	db.Model(&models.Payment{}).Count(&payments)
	if appointments != 0 || payments != 0 {
		t.Errorf("rollback left %d appointments, %d payments", appointments, payments)
	}
}

func TestCreateLedgerFailureRollsBackPayable(t *testing.T) {
	engine, _, db := newTestEngine(t)
	engine.beforeLedger = func(tx *gorm.DB) error {
		return errors.New("injected ledger failure")
	}

	_, err := engine.Create(context.Background(), resolvedAppointment(1, 500), models.PaymentMethodGateway)
	if err == nil {
		t.Fatal("expected error")
	}

	var appointments int64
	db.Model(&models.Appointment{}).Count(&appointments)
	if appointments != 0 {
		t.Errorf("payable survived a failed ledger insert: %d appointments", appointments)
	}
}

func TestCreateRejectsUnknownMethod(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Create(context.Background(), resolvedAppointment(1, 500), models.PaymentMethod("BARTER"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

// createPending persists an appointment payable with an open ledger
// entry and returns the confirmation a well-behaved gateway would send.
func createPending(t *testing.T, engine *Engine) *VerifyRequest {
	t.Helper()
	result, err := engine.Create(context.Background(), resolvedAppointment(1, 500), models.PaymentMethodGateway)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	paymentID := "pay_test123"
	return &VerifyRequest{
		PayableID:        result.PayableID,
		PayableType:      models.PayableTypeAppointment,
		GatewayOrderID:   result.GatewayOrder.ID,
		GatewayPaymentID: paymentID,
		GatewaySignature: Signature(result.GatewayOrder.ID, paymentID, testSecret),
		UserID:           1,
	}
}

func TestVerifyFinalizesLedgerAndPayable(t *testing.T) {
	engine, _, db := newTestEngine(t)
	req := createPending(t, engine)

	id, err := engine.Verify(context.Background(), req)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != req.PayableID {
		t.Errorf("returned id = %d, want %d", id, req.PayableID)
	}

	var ledger models.Payment
	if err := db.Where("payable_id = ?", req.PayableID).First(&ledger).Error; err != nil {
		t.Fatalf("ledger lookup: %v", err)
	}
	if ledger.Status != models.PaymentStatusPaid {
		t.Errorf("ledger status = %s, want PAID", ledger.Status)
	}
	if ledger.GatewayPaymentID == nil || *ledger.GatewayPaymentID != req.GatewayPaymentID {
		t.Error("ledger missing gateway payment id")
	}

	var appt models.Appointment
	if err := db.First(&appt, req.PayableID).Error; err != nil {
		t.Fatalf("appointment lookup: %v", err)
	}
	if appt.Status != models.AppointmentStatusScheduled {
		t.Errorf("appointment status = %s, want scheduled", appt.Status)
	}

	var callback models.GatewayCallback
	if err := db.Where("payable_id = ? AND outcome = ?", req.PayableID, "verified").First(&callback).Error; err != nil {
		t.Errorf("verified callback not recorded: %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	engine, _, db := newTestEngine(t)
	req := createPending(t, engine)
	req.GatewaySignature = Signature(req.GatewayOrderID, "pay_attacker", testSecret)

	_, err := engine.Verify(context.Background(), req)
	var vErr *VerificationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want VerificationError", err)
	}

	var ledger models.Payment
	if err := db.Where("payable_id = ?", req.PayableID).First(&ledger).Error; err != nil {
		t.Fatalf("ledger lookup: %v", err)
	}
	if ledger.Status != models.PaymentStatusFailed {
		t.Errorf("ledger status = %s, want FAILED", ledger.Status)
	}

	// the payable must be untouched
	var appt models.Appointment
	if err := db.First(&appt, req.PayableID).Error; err != nil {
		t.Fatalf("appointment lookup: %v", err)
	}
	if appt.Status != models.AppointmentStatusPending {
		t.Errorf("appointment status = %s, want pending", appt.Status)
	}

	var callback models.GatewayCallback
	if err := db.Where("payable_id = ? AND outcome = ?", req.PayableID, "signature_mismatch").First(&callback).Error; err != nil {
		t.Errorf("mismatch callback not recorded: %v", err)
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	req := createPending(t, engine)

	if _, err := engine.Verify(context.Background(), req); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if _, err := engine.Verify(context.Background(), req); err != nil {
		t.Fatalf("duplicate Verify: %v", err)
	}
}

func TestVerifyPaidWithDifferentCredentialsConflicts(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	req := createPending(t, engine)

	if _, err := engine.Verify(context.Background(), req); err != nil {
		t.Fatalf("first Verify: %v", err)
	}

	other := *req
	other.GatewayPaymentID = "pay_other"
	other.GatewaySignature = Signature(other.GatewayOrderID, other.GatewayPaymentID, testSecret)

	_, err := engine.Verify(context.Background(), &other)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
}

func TestVerifyFailedAttemptIsTerminal(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	req := createPending(t, engine)

	bad := *req
	bad.GatewaySignature = "deadbeef"
	if _, err := engine.Verify(context.Background(), &bad); err == nil {
		t.Fatal("expected verification failure")
	}

	// even a now-correct confirmation cannot reopen the attempt
	_, err := engine.Verify(context.Background(), req)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
}

func TestVerifyUnknownPayable(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Verify(context.Background(), &VerifyRequest{
		PayableID:        999,
		PayableType:      models.PayableTypeAppointment,
		GatewayOrderID:   "order_none",
		GatewayPaymentID: "pay_none",
		GatewaySignature: "00",
	})
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestPlanBypassSettlesImmediately(t *testing.T) {
	engine, gw, db := newTestEngine(t)

	planID := uint(7)
	result, err := engine.Create(context.Background(), &ResolvedPayable{
		Kind:          models.PayableTypePlanOrder,
		OwnerID:       1,
		Amount:        0,
		Currency:      "INR",
		OrderableType: models.OrderableTypeDoctor,
		OrderableID:   &planID,
		Bypass:        true,
	}, models.PaymentMethodGateway)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if gw.calls != 0 {
		t.Errorf("gateway called %d times for a bypass purchase", gw.calls)
	}
	if result.Ledger.Status != models.PaymentStatusPaid {
		t.Errorf("ledger status = %s, want PAID", result.Ledger.Status)
	}
	if result.Ledger.PaymentMethod != models.PaymentMethodCash {
		t.Errorf("ledger method = %s, want CASH", result.Ledger.PaymentMethod)
	}

	var order models.Order
	if err := db.First(&order, result.PayableID).Error; err != nil {
		t.Fatalf("order lookup: %v", err)
	}
	if order.Status != models.OrderStatusPaid {
		t.Errorf("order status = %s, want PAID", order.Status)
	}
}

func TestProductOrderVerifyStoresShippingAddress(t *testing.T) {
	engine, _, db := newTestEngine(t)

	result, err := engine.Create(context.Background(), &ResolvedPayable{
		Kind:          models.PayableTypeProductOrder,
		OwnerID:       4,
		Amount:        250,
		Currency:      "INR",
		OrderableType: models.OrderableTypeProduct,
		Lines: []Line{
			{ProductID: 1, Quantity: 2, UnitPrice: 100},
			{ProductID: 2, Quantity: 1, UnitPrice: 50},
		},
	}, models.PaymentMethodGateway)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var items int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", result.PayableID).Count(&items)
	if items != 2 {
		t.Errorf("order items = %d, want 2", items)
	}

	paymentID := "pay_ship1"
	_, err = engine.Verify(context.Background(), &VerifyRequest{
		PayableID:        result.PayableID,
		PayableType:      models.PayableTypeProductOrder,
		GatewayOrderID:   result.GatewayOrder.ID,
		GatewayPaymentID: paymentID,
		GatewaySignature: Signature(result.GatewayOrder.ID, paymentID, testSecret),
		UserID:           4,
		ShippingAddress: &models.ShippingAddress{
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			PostalCode:   "560001",
			Country:      "IN",
		},
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	var addr models.ShippingAddress
	if err := db.Where("order_id = ?", result.PayableID).First(&addr).Error; err != nil {
		t.Fatalf("shipping address not persisted: %v", err)
	}
	if addr.UserID != 4 || addr.AddressLine1 != "12 MG Road" {
		t.Errorf("unexpected shipping address %+v", addr)
	}
}

func TestDeleteGuardsOpenAndCapturedPayments(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	req := createPending(t, engine)

	// PENDING blocks deletion
	err := engine.Delete(context.Background(), models.PayableTypeAppointment, req.PayableID)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("delete of pending payable: err = %v, want ConflictError", err)
	}

	// PAID blocks deletion too
	if _, err := engine.Verify(context.Background(), req); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	err = engine.Delete(context.Background(), models.PayableTypeAppointment, req.PayableID)
	if !errors.As(err, &cErr) {
		t.Fatalf("delete of paid payable: err = %v, want ConflictError", err)
	}
}

func TestDeleteAllowedAfterFailedAttempt(t *testing.T) {
	engine, _, db := newTestEngine(t)
	req := createPending(t, engine)

	bad := *req
	bad.GatewaySignature = "deadbeef"
	if _, err := engine.Verify(context.Background(), &bad); err == nil {
		t.Fatal("expected verification failure")
	}

	if err := engine.Delete(context.Background(), models.PayableTypeAppointment, req.PayableID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var appt models.Appointment
	err := db.First(&appt, req.PayableID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("appointment still retrievable after delete: %v", err)
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := Signature("order_abc", "pay_xyz", testSecret)

	if !VerifySignature("order_abc", "pay_xyz", sig, testSecret) {
		t.Error("genuine signature rejected")
	}
	if VerifySignature("order_abc", "pay_other", sig, testSecret) {
		t.Error("signature accepted for a different payment id")
	}
	if VerifySignature("order_abc", "pay_xyz", sig, "wrong-secret") {
		t.Error("signature accepted under a different secret")
	}
	if VerifySignature("order_abc", "pay_xyz", "not-hex!", testSecret) {
		t.Error("non-hex signature accepted")
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{500, 50000},
		{19.99, 1999},
		{0.1, 10},
		{1234.565, 123457},
	}
	for _, tc := range cases {
		if got := minorUnits(tc.amount); got != tc.want {
			t.Errorf("minorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
