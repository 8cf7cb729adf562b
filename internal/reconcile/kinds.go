package reconcile

import (
	"errors"

	"gorm.io/gorm"

	"medimart_api/internal/models"
)

// Line is one priced order line computed by the resolver.
type Line struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// ResolvedPayable is the not-yet-persisted output of the resolver:
// everything the engine needs to create a payable and its ledger entry.
type ResolvedPayable struct {
	Kind     models.PayableType
	OwnerID  uint
	Amount   float64
	Currency string

	// Lines is set for PRODUCT_ORDER only
	Lines []Line

	// OrderableType/OrderableID are set for order kinds
	OrderableType models.OrderableType
	OrderableID   *uint

	// Appointment is the prebuilt record for the APPOINTMENT kind
	Appointment *models.Appointment

	// Bypass marks the free-tier / administrative plan purchase: no
	// gateway order is minted and the payable is PAID immediately.
	Bypass bool
}

// kindHandler is the per-kind behavior the engine is parameterized by:
// how to insert the payable, check it exists, flip it to its paid state,
// and run the optional post-success side effect.
type kindHandler interface {
	insert(tx *gorm.DB, rp *ResolvedPayable) (uint, interface{}, error)
	exists(tx *gorm.DB, id uint) error
	markPaid(tx *gorm.DB, id uint) error
	afterPaid(tx *gorm.DB, id uint, req *VerifyRequest) error
}

func defaultKinds() map[models.PayableType]kindHandler {
	return map[models.PayableType]kindHandler{
		models.PayableTypeAppointment:  appointmentKind{},
		models.PayableTypeProductOrder: orderKind{payableType: models.PayableTypeProductOrder},
		models.PayableTypePlanOrder:    orderKind{payableType: models.PayableTypePlanOrder},
	}
}

type appointmentKind struct{}

func (appointmentKind) insert(tx *gorm.DB, rp *ResolvedPayable) (uint, interface{}, error) {
	appt := rp.Appointment
	if appt == nil {
		return 0, nil, &ValidationError{Msg: "appointment details missing"}
	}
	appt.Status = models.AppointmentStatusPending
	appt.Fee = rp.Amount
	if err := tx.Create(appt).Error; err != nil {
		return 0, nil, err
	}
	return appt.ID, appt, nil
}

func (appointmentKind) exists(tx *gorm.DB, id uint) error {
	var appt models.Appointment
	if err := tx.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "appointment"}
		}
		return err
	}
	return nil
}

func (appointmentKind) markPaid(tx *gorm.DB, id uint) error {
	return tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, models.AppointmentStatusPending).
		Update("status", models.AppointmentStatusScheduled).Error
}

func (appointmentKind) afterPaid(tx *gorm.DB, id uint, req *VerifyRequest) error {
	return nil
}

// orderKind covers both PRODUCT_ORDER and PLAN_ORDER: both live in the
// orders table, discriminated by the ledger's payableType tag.
type orderKind struct {
	payableType models.PayableType
}

func (k orderKind) insert(tx *gorm.DB, rp *ResolvedPayable) (uint, interface{}, error) {
	status := models.OrderStatusPending
	if rp.Bypass {
		status = models.OrderStatusPaid
	}
	order := models.Order{
		UserID:        rp.OwnerID,
		OrderableType: rp.OrderableType,
		OrderableID:   rp.OrderableID,
		Amount:        rp.Amount,
		Currency:      rp.Currency,
		Status:        status,
	}
	if err := tx.Create(&order).Error; err != nil {
		return 0, nil, err
	}

	for _, line := range rp.Lines {
		item := models.OrderItem{
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.UnitPrice,
		}
		if err := tx.Create(&item).Error; err != nil {
			return 0, nil, err
		}
		order.Items = append(order.Items, item)
	}
	return order.ID, &order, nil
}

func (k orderKind) exists(tx *gorm.DB, id uint) error {
	var order models.Order
	if err := tx.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "order"}
		}
		return err
	}
	return nil
}

func (k orderKind) markPaid(tx *gorm.DB, id uint) error {
	return tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("status", models.OrderStatusPaid).Error
}

func (k orderKind) afterPaid(tx *gorm.DB, id uint, req *VerifyRequest) error {
	if k.payableType != models.PayableTypeProductOrder || req.ShippingAddress == nil {
		return nil
	}
	addr := *req.ShippingAddress
	addr.ID = 0
	addr.OrderID = id
	addr.UserID = req.UserID
	return tx.Create(&addr).Error
}
