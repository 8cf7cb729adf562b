package reconcile

import (
	"errors"
	"testing"

	"medimart_api/internal/models"
)

func TestResolveAppointment(t *testing.T) {
	r := NewResolver(nil) // no I/O on this path

	rp, err := r.ResolveAppointment(AppointmentInput{
		PatientID: 1,
		DoctorID:  2,
		ClinicID:  3,
		Date:      "2026-09-15",
		Time:      "10:30",
		Fee:       750,
	})
	if err != nil {
		t.Fatalf("ResolveAppointment: %v", err)
	}
	if rp.Kind != models.PayableTypeAppointment {
		t.Errorf("kind = %s", rp.Kind)
	}
	if rp.Amount != 750 || rp.Currency != "INR" {
		t.Errorf("amount/currency = %v/%s", rp.Amount, rp.Currency)
	}
	if rp.Appointment == nil || rp.Appointment.PatientID != 1 {
		t.Error("appointment record not prepared")
	}

	_, err = r.ResolveAppointment(AppointmentInput{PatientID: 1, Fee: -1})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("negative fee: err = %v, want ValidationError", err)
	}
}

func TestResolveProductOrder(t *testing.T) {
	db := newTestDB(t)
	r := NewResolver(db)

	products := []models.Product{
		{Name: "Thermometer", Description: "digital", CategoryID: 1, Price: 199.50},
		{Name: "Bandages", Description: "pack of 10", CategoryID: 1, Price: 45},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	rp, err := r.ResolveProductOrder(9, []ProductLineInput{
		{ProductID: products[0].ID, Quantity: 2},
		{ProductID: products[1].ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("ResolveProductOrder: %v", err)
	}

	want := 2*199.50 + 3*45
	if rp.Amount != want {
		t.Errorf("total = %v, want %v", rp.Amount, want)
	}
	if len(rp.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(rp.Lines))
	}
	if rp.Lines[0].UnitPrice != 199.50 {
		t.Errorf("unit price = %v, want 199.50", rp.Lines[0].UnitPrice)
	}
	if rp.OrderableType != models.OrderableTypeProduct {
		t.Errorf("orderable type = %s", rp.OrderableType)
	}
}

func TestResolveProductOrderRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	r := NewResolver(db)

	var vErr *ValidationError
	if _, err := r.ResolveProductOrder(1, nil); !errors.As(err, &vErr) {
		t.Errorf("empty order: err = %v, want ValidationError", err)
	}
	if _, err := r.ResolveProductOrder(1, []ProductLineInput{{ProductID: 1, Quantity: 0}}); !errors.As(err, &vErr) {
		t.Errorf("zero quantity: err = %v, want ValidationError", err)
	}

	var nfErr *NotFoundError
	if _, err := r.ResolveProductOrder(1, []ProductLineInput{{ProductID: 404, Quantity: 1}}); !errors.As(err, &nfErr) {
		t.Errorf("unknown product: err = %v, want NotFoundError", err)
	}
}

func TestResolvePlanOrder(t *testing.T) {
	db := newTestDB(t)
	r := NewResolver(db)

	plans := []models.Plan{
		{UserType: models.OrderableTypeDoctor, Name: models.PlanNameBasic, Price: 0, Currency: "INR"},
		{UserType: models.OrderableTypeDoctor, Name: models.PlanNamePro, Price: 999, Currency: "INR"},
	}
	for i := range plans {
		if err := db.Create(&plans[i]).Error; err != nil {
			t.Fatalf("seed plan: %v", err)
		}
	}

	tests := []struct {
		name       string
		planName   string
		isAdmin    bool
		wantBypass bool
		wantAmount float64
	}{
		{"paid plan goes through the gateway", models.PlanNamePro, false, false, 999},
		{"free plan bypasses the gateway", models.PlanNameBasic, false, true, 0},
		{"admin purchase bypasses the gateway", models.PlanNamePro, true, true, 999},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rp, err := r.ResolvePlanOrder(5, models.OrderableTypeDoctor, tc.planName, tc.isAdmin)
			if err != nil {
				t.Fatalf("ResolvePlanOrder: %v", err)
			}
			if rp.Bypass != tc.wantBypass {
				t.Errorf("bypass = %v, want %v", rp.Bypass, tc.wantBypass)
			}
			if rp.Amount != tc.wantAmount {
				t.Errorf("amount = %v, want %v", rp.Amount, tc.wantAmount)
			}
			if rp.OrderableID == nil {
				t.Error("plan id not referenced")
			}
		})
	}

	var nfErr *NotFoundError
	if _, err := r.ResolvePlanOrder(5, models.OrderableTypeClinic, models.PlanNamePro, false); !errors.As(err, &nfErr) {
		t.Errorf("unknown plan: err = %v, want NotFoundError", err)
	}

	var vErr *ValidationError
	if _, err := r.ResolvePlanOrder(5, models.OrderableTypeProduct, models.PlanNamePro, false); !errors.As(err, &vErr) {
		t.Errorf("bad subscriber type: err = %v, want ValidationError", err)
	}
}
