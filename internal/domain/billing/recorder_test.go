package billing

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

func testInvoice(total money.Money) *Invoice {
	return &Invoice{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		TotalAmount: total,
		Status:      StatusSent,
	}
}

func completed(amount money.Money) *Payment {
	return &Payment{ID: uuid.New(), Amount: amount, Status: PaymentCompleted, Method: MethodCard}
}

func TestApplyPaymentExactCoverage(t *testing.T) {
	inv := testInvoice(13563)

	updated, applied, err := ApplyPayment(inv, nil, completed(13563))
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if updated.Status != StatusPaid {
		t.Errorf("status = %s, want paid", updated.Status)
	}
	if applied.InvoiceID != inv.ID || applied.PatientID != inv.PatientID {
		t.Error("applied payment should reference the invoice and its patient")
	}
	if inv.Status != StatusSent {
		t.Error("input invoice must not be mutated")
	}
}

func TestApplyPaymentBoundary(t *testing.T) {
	// Trichotomy around the exact balance: one minor unit under leaves the
	// status alone, exact flips to paid, one minor unit over is rejected.
	inv := testInvoice(10000)

	t.Run("one unit under", func(t *testing.T) {
		updated, _, err := ApplyPayment(inv, nil, completed(9999))
		if err != nil {
			t.Fatalf("ApplyPayment: %v", err)
		}
		if updated.Status != StatusSent {
			t.Errorf("status = %s, want sent", updated.Status)
		}
	})

	t.Run("exact", func(t *testing.T) {
		updated, _, err := ApplyPayment(inv, nil, completed(10000))
		if err != nil {
			t.Fatalf("ApplyPayment: %v", err)
		}
		if updated.Status != StatusPaid {
			t.Errorf("status = %s, want paid", updated.Status)
		}
	})

	t.Run("one unit over", func(t *testing.T) {
		_, _, err := ApplyPayment(inv, nil, completed(10001))
		var oe *OverpaymentError
		if !errors.As(err, &oe) {
			t.Fatalf("expected OverpaymentError, got %v", err)
		}
		if oe.Excess != 1 {
			t.Errorf("excess = %d, want 1", oe.Excess)
		}
	})
}

func TestApplyPaymentAccumulates(t *testing.T) {
	inv := testInvoice(10000)
	existing := []*Payment{completed(6000)}

	t.Run("partial leaves status", func(t *testing.T) {
		updated, _, err := ApplyPayment(inv, existing, completed(3000))
		if err != nil {
			t.Fatalf("ApplyPayment: %v", err)
		}
		if updated.Status != StatusSent {
			t.Errorf("status = %s, want sent", updated.Status)
		}
	})

	t.Run("remainder completes", func(t *testing.T) {
		updated, _, err := ApplyPayment(inv, existing, completed(4000))
		if err != nil {
			t.Fatalf("ApplyPayment: %v", err)
		}
		if updated.Status != StatusPaid {
			t.Errorf("status = %s, want paid", updated.Status)
		}
	})

	t.Run("excess over remainder rejected", func(t *testing.T) {
		_, _, err := ApplyPayment(inv, existing, completed(4001))
		var oe *OverpaymentError
		if !errors.As(err, &oe) {
			t.Fatalf("expected OverpaymentError, got %v", err)
		}
	})

	t.Run("non-completed payments do not count", func(t *testing.T) {
		mixed := []*Payment{
			completed(6000),
			{ID: uuid.New(), Amount: 5000, Status: PaymentPending},
			{ID: uuid.New(), Amount: 5000, Status: PaymentFailed},
			{ID: uuid.New(), Amount: 5000, Status: PaymentRefunded},
		}
		updated, _, err := ApplyPayment(inv, mixed, completed(4000))
		if err != nil {
			t.Fatalf("ApplyPayment: %v", err)
		}
		if updated.Status != StatusPaid {
			t.Errorf("status = %s, want paid", updated.Status)
		}
	})
}

func TestApplyPaymentPending(t *testing.T) {
	inv := testInvoice(10000)
	p := &Payment{ID: uuid.New(), Amount: 10000, Status: PaymentPending}

	updated, applied, err := ApplyPayment(inv, nil, p)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if updated.Status != StatusSent {
		t.Errorf("pending payment changed status to %s", updated.Status)
	}
	if applied.Status != PaymentPending {
		t.Errorf("payment status = %s, want pending", applied.Status)
	}
}

func TestApplyPaymentValidation(t *testing.T) {
	inv := testInvoice(10000)

	t.Run("zero amount", func(t *testing.T) {
		_, _, err := ApplyPayment(inv, nil, &Payment{Amount: 0})
		if !errors.Is(err, money.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		_, _, err := ApplyPayment(inv, nil, &Payment{Amount: -500})
		if !errors.Is(err, money.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("default status is completed", func(t *testing.T) {
		_, applied, err := ApplyPayment(inv, nil, &Payment{Amount: 100, Method: MethodCash})
		if err != nil {
			t.Fatalf("ApplyPayment: %v", err)
		}
		if applied.Status != PaymentCompleted {
			t.Errorf("status = %s, want completed", applied.Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, _, err := ApplyPayment(inv, nil, &Payment{Amount: 100, Status: "settled"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		_, _, err := ApplyPayment(inv, nil, &Payment{Amount: 100, Method: "barter"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestReversePayment(t *testing.T) {
	p := completed(5000)
	reversed, err := ReversePayment(p)
	if err != nil {
		t.Fatalf("ReversePayment: %v", err)
	}
	if reversed.Status != PaymentRefunded {
		t.Errorf("status = %s, want refunded", reversed.Status)
	}
	if p.Status != PaymentCompleted {
		t.Error("input payment must not be mutated")
	}

	for _, status := range []string{PaymentPending, PaymentFailed, PaymentRefunded} {
		p := &Payment{ID: uuid.New(), Amount: 5000, Status: status}
		if _, err := ReversePayment(p); !errors.Is(err, ErrNotReversible) {
			t.Errorf("reversing %s payment should fail with ErrNotReversible, got %v", status, err)
		}
	}
}

func TestRecomputeStatus(t *testing.T) {
	cases := []struct {
		name     string
		status   string
		payments []*Payment
		total    money.Money
		want     string
	}{
		{"covered flips to paid", StatusSent, []*Payment{completed(100)}, 100, StatusPaid},
		{"paid losing coverage reverts to sent", StatusPaid, []*Payment{completed(40)}, 100, StatusSent},
		{"paid with no payments reverts to sent", StatusPaid, nil, 100, StatusSent},
		{"sent partially covered stays sent", StatusSent, []*Payment{completed(40)}, 100, StatusSent},
		{"overdue partially covered stays overdue", StatusOverdue, []*Payment{completed(40)}, 100, StatusOverdue},
		{"overdue covered flips to paid", StatusOverdue, []*Payment{completed(100)}, 100, StatusPaid},
		{"cancelled is terminal", StatusCancelled, []*Payment{completed(100)}, 100, StatusCancelled},
		{"refunded payments ignored", StatusPaid, []*Payment{{Amount: 100, Status: PaymentRefunded}}, 100, StatusSent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{TotalAmount: tc.total, Status: tc.status}
			if got := RecomputeStatus(inv, tc.payments); got != tc.want {
				t.Errorf("RecomputeStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestBalance(t *testing.T) {
	inv := testInvoice(10000)
	payments := []*Payment{
		completed(3000),
		{Amount: 2000, Status: PaymentPending},
		completed(1000),
	}
	if got := Balance(inv, payments); got != 6000 {
		t.Errorf("balance = %d, want 6000", got)
	}
	if got := PaidToDate(payments); got != 4000 {
		t.Errorf("paid to date = %d, want 4000", got)
	}
}
