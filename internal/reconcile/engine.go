package reconcile

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"medimart_api/internal/models"
)

const defaultGatewayTimeout = 5 * time.Second

// GatewayOrder is the remote order handle returned by the gateway,
// passed back to the client for payment-sheet rendering.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Gateway mints remote orders at the payment provider. Implementations
// must honor the context deadline.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error)
}

// Engine ties a payable to its ledger entry: it creates both inside one
// transaction and later finalizes both upon a verified confirmation.
// No other component writes status on either record.
type Engine struct {
	db             *gorm.DB
	gateway        Gateway
	secret         string
	gatewayTimeout time.Duration
	kinds          map[models.PayableType]kindHandler

	// fault-injection point between the gateway call and the ledger
	// insert, used by tests
	beforeLedger func(tx *gorm.DB) error
}

func NewEngine(db *gorm.DB, gateway Gateway, secret string) *Engine {
	return &Engine{
		db:             db,
		gateway:        gateway,
		secret:         secret,
		gatewayTimeout: defaultGatewayTimeout,
		kinds:          defaultKinds(),
	}
}

// CreateResult is the committed payable + ledger pair, plus the remote
// order when one was minted.
type CreateResult struct {
	PayableID    uint
	Payable      interface{}
	Ledger       *models.Payment
	GatewayOrder *GatewayOrder
}

// Create atomically persists the payable and its initial ledger entry,
// minting a remote gateway order first when online payment is
// requested. Either everything commits or nothing does; a remote order
// minted before a local failure is simply orphaned at the gateway.
func (e *Engine) Create(ctx context.Context, rp *ResolvedPayable, method models.PaymentMethod) (*CreateResult, error) {
	kind, ok := e.kinds[rp.Kind]
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown payable type %q", rp.Kind)}
	}
	if method != models.PaymentMethodGateway && method != models.PaymentMethodCash {
		return nil, &ValidationError{Msg: "payment method must be GATEWAY or CASH"}
	}

	var result CreateResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, record, err := kind.insert(tx, rp)
		if err != nil {
			return err
		}

		ledger := models.Payment{
			UserID:        rp.OwnerID,
			PayableID:     id,
			PayableType:   rp.Kind,
			PaymentMethod: method,
			Amount:        rp.Amount,
			Currency:      rp.Currency,
			Status:        models.PaymentStatusPending,
		}

		switch {
		case rp.Bypass:
			// free tier or administrative purchase: settled on the spot
			ledger.PaymentMethod = models.PaymentMethodCash
			ledger.Status = models.PaymentStatusPaid
		case method == models.PaymentMethodGateway && rp.Amount > 0:
			gctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
			defer cancel()

			order, err := e.gateway.CreateOrder(gctx, minorUnits(rp.Amount), rp.Currency, "receipt_"+uuid.NewString())
			if err != nil {
				return &GatewayUnavailableError{Err: err}
			}
			ledger.GatewayOrderID = &order.ID
			result.GatewayOrder = order
		}

		if e.beforeLedger != nil {
			if err := e.beforeLedger(tx); err != nil {
				return err
			}
		}

		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		result.PayableID = id
		result.Payable = record
		result.Ledger = &ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyRequest carries a client-submitted payment confirmation. All
// gateway fields are opaque strings until the signature check passes.
type VerifyRequest struct {
	PayableID        uint
	PayableType      models.PayableType
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string

	// UserID is the authenticated caller, used for the shipping address
	UserID uint
	// ShippingAddress is consumed for PRODUCT_ORDER only
	ShippingAddress *models.ShippingAddress
}

// Verify authenticates a payment confirmation and finalizes ledger and
// payable together. It is idempotent: repeating a successful call with
// identical arguments succeeds again without re-applying anything.
func (e *Engine) Verify(ctx context.Context, req *VerifyRequest) (uint, error) {
	kind, ok := e.kinds[req.PayableType]
	if !ok {
		return 0, &ValidationError{Msg: fmt.Sprintf("unknown payable type %q", req.PayableType)}
	}

	db := e.db.WithContext(ctx)
	if err := kind.exists(db, req.PayableID); err != nil {
		return 0, err
	}

	var ledger models.Payment
	err := db.Where("payable_id = ? AND payable_type = ? AND gateway_order_id = ?",
		req.PayableID, req.PayableType, req.GatewayOrderID).First(&ledger).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "payment record"}
		}
		return 0, err
	}

	switch ledger.Status {
	case models.PaymentStatusPaid:
		// duplicate delivery of the same confirmation is a no-op
		if ledger.GatewayPaymentID != nil && constantTimeEqual(*ledger.GatewayPaymentID, req.GatewayPaymentID) &&
			ledger.GatewaySignature != nil && constantTimeEqual(*ledger.GatewaySignature, req.GatewaySignature) {
			return req.PayableID, nil
		}
		return 0, &ConflictError{Msg: "payment already verified with different credentials"}
	case models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return 0, &ConflictError{Msg: "payment attempt already closed; create a new order to retry"}
	}

	if !VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature, e.secret) {
		// the payable stays untouched; only this attempt is closed
		failErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Payment{}).
				Where("id = ? AND status = ?", ledger.ID, models.PaymentStatusPending).
				Update("status", models.PaymentStatusFailed).Error; err != nil {
				return err
			}
			return e.recordCallback(tx, req, "signature_mismatch")
		})
		if failErr != nil {
			return 0, failErr
		}
		return 0, &VerificationError{Reason: "invalid signature"}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", ledger.ID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":             models.PaymentStatusPaid,
				"gateway_payment_id": req.GatewayPaymentID,
				"gateway_signature":  req.GatewaySignature,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Msg: "payment state changed concurrently"}
		}
		if err := kind.markPaid(tx, req.PayableID); err != nil {
			return err
		}
		if err := kind.afterPaid(tx, req.PayableID, req); err != nil {
			return err
		}
		return e.recordCallback(tx, req, "verified")
	})
	if err != nil {
		return 0, err
	}
	return req.PayableID, nil
}

// Delete removes a payable, but only once its ledger entry no longer
// represents money owed or captured: PENDING and PAID entries block
// deletion.
func (e *Engine) Delete(ctx context.Context, payableType models.PayableType, id uint) error {
	kind, ok := e.kinds[payableType]
	if !ok {
		return &ValidationError{Msg: fmt.Sprintf("unknown payable type %q", payableType)}
	}

	db := e.db.WithContext(ctx)
	if err := kind.exists(db, id); err != nil {
		return err
	}

	var ledger models.Payment
	err := db.Where("payable_id = ? AND payable_type = ?", id, payableType).
		Order("created_at desc").First(&ledger).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		if ledger.Status == models.PaymentStatusPending || ledger.Status == models.PaymentStatusPaid {
			return &ConflictError{Msg: "payable has an open or captured payment and cannot be deleted"}
		}
	}

	switch payableType {
	case models.PayableTypeAppointment:
		return db.Delete(&models.Appointment{}, id).Error
	default:
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Order{}, id).Error
		})
	}
}

func (e *Engine) recordCallback(tx *gorm.DB, req *VerifyRequest, outcome string) error {
	meta, err := json.Marshal(map[string]string{
		"gateway_order_id":   req.GatewayOrderID,
		"gateway_payment_id": req.GatewayPaymentID,
	})
	if err != nil {
		return err
	}
	cb := models.GatewayCallback{
		PayableID:      req.PayableID,
		PayableType:    req.PayableType,
		GatewayOrderID: req.GatewayOrderID,
		Outcome:        outcome,
		Metadata:       meta,
	}
	return tx.Create(&cb).Error
}

// Signature computes the gateway's confirmation digest:
// HMAC-SHA256 over "<orderID>|<paymentID>", hex encoded.
func Signature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a submitted signature in constant time. A
// timing-variable comparison would let an attacker forge a signature
// byte by byte.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sigBytes)
}

func constantTimeEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// minorUnits converts a major-unit amount to the gateway's minor unit
// (e.g. rupees to paise).
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
