package reconcile

import (
	"errors"

	"gorm.io/gorm"

	"medimart_api/internal/models"
)

const defaultCurrency = "INR"

// Resolver computes the amount, currency and order lines for each
// payable kind. Pure computation apart from the price lookups.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ProductLineInput is one requested product line.
type ProductLineInput struct {
	ProductID uint
	Quantity  int
}

// AppointmentInput carries the booking details. The fee is fixed at
// booking time by business rule and is not recomputed here.
type AppointmentInput struct {
	PatientID        uint
	DoctorID         uint
	ClinicID         uint
	Date             string
	Time             string
	Name             string
	Location         string
	ConsultationType string
	HealthConcern    string
	Fee              float64
}

// ResolveAppointment builds the appointment payable. No I/O.
func (r *Resolver) ResolveAppointment(in AppointmentInput) (*ResolvedPayable, error) {
	if in.Fee < 0 {
		return nil, &ValidationError{Msg: "fee must not be negative"}
	}
	appt := &models.Appointment{
		PatientID:        in.PatientID,
		DoctorID:         in.DoctorID,
		ClinicID:         in.ClinicID,
		Date:             in.Date,
		Time:             in.Time,
		Name:             in.Name,
		Location:         in.Location,
		ConsultationType: in.ConsultationType,
		HealthConcern:    in.HealthConcern,
	}
	return &ResolvedPayable{
		Kind:        models.PayableTypeAppointment,
		OwnerID:     in.PatientID,
		Amount:      in.Fee,
		Currency:    defaultCurrency,
		Appointment: appt,
	}, nil
}

// ResolveProductOrder prices each requested product and computes the
// order total. Fails if any product id is unknown.
func (r *Resolver) ResolveProductOrder(userID uint, items []ProductLineInput) (*ResolvedPayable, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Msg: "order must contain at least one product"}
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &ValidationError{Msg: "quantity must be at least 1"}
		}
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	priceByID := make(map[uint]float64, len(products))
	for _, p := range products {
		priceByID[p.ID] = p.Price
	}

	var total float64
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		price, ok := priceByID[item.ProductID]
		if !ok {
			return nil, &NotFoundError{Resource: "product"}
		}
		total += price * float64(item.Quantity)
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}

	return &ResolvedPayable{
		Kind:          models.PayableTypeProductOrder,
		OwnerID:       userID,
		Amount:        total,
		Currency:      defaultCurrency,
		Lines:         lines,
		OrderableType: models.OrderableTypeProduct,
	}, nil
}

// ResolvePlanOrder looks the plan up by subscriber kind and name. Free
// plans and administrative purchases take the bypass branch: the order
// is marked PAID without any gateway interaction. The admin flag must
// come from verified credentials, never from the request body.
func (r *Resolver) ResolvePlanOrder(userID uint, subscriberType models.OrderableType, planName string, isAdmin bool) (*ResolvedPayable, error) {
	if subscriberType != models.OrderableTypeDoctor && subscriberType != models.OrderableTypeClinic {
		return nil, &ValidationError{Msg: "subscriber type must be DOCTOR or CLINIC"}
	}

	var plan models.Plan
	err := r.db.Where("user_type = ? AND name = ?", subscriberType, planName).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "plan"}
		}
		return nil, err
	}

	currency := plan.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	planID := plan.ID
	return &ResolvedPayable{
		Kind:          models.PayableTypePlanOrder,
		OwnerID:       userID,
		Amount:        plan.Price,
		Currency:      currency,
		OrderableType: subscriberType,
		OrderableID:   &planID,
		Bypass:        plan.Price == 0 || isAdmin,
	}, nil
}
