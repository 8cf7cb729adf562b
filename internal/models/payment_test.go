package models

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusPaid, PaymentStatusFailed, false},
		{PaymentStatusFailed, PaymentStatusPaid, false},
		{PaymentStatusFailed, PaymentStatusPending, false},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	if PaymentStatusPending.Terminal() {
		t.Error("PENDING must not be terminal")
	}
	for _, s := range []PaymentStatus{PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}
