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

type OrderHandler struct {
	db       *gorm.DB
	engine   *reconcile.Engine
	resolver *reconcile.Resolver
}

func NewOrderHandler(db *gorm.DB, engine *reconcile.Engine, resolver *reconcile.Resolver) *OrderHandler {
	return &OrderHandler{db: db, engine: engine, resolver: resolver}
}

type orderLineRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Type          string             `json:"type" validate:"required,oneof=PRODUCT DOCTOR CLINIC"`
	Products      []orderLineRequest `json:"products" validate:"omitempty,dive"`
	PlanType      string             `json:"plan_type"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=GATEWAY CASH"`
}

// CreateOrder opens a product or plan order together with its payment
// attempt. Plan orders by admins or for the free tier settle
// immediately without a gateway round trip.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	req := new(createOrderRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)
	isAdmin := getStringFromContext(c, middleware.ContextUserRole) == models.RoleAdmin

	var (
		resolved *reconcile.ResolvedPayable
		err      error
	)
	if req.Type == string(models.OrderableTypeProduct) {
		lines := make([]reconcile.ProductLineInput, 0, len(req.Products))
		for _, p := range req.Products {
			lines = append(lines, reconcile.ProductLineInput{ProductID: p.ProductID, Quantity: p.Quantity})
		}
		resolved, err = h.resolver.ResolveProductOrder(userID, lines)
	} else {
		resolved, err = h.resolver.ResolvePlanOrder(userID, models.OrderableType(req.Type), req.PlanType, isAdmin)
	}
	if err != nil {
		return err
	}

	result, err := h.engine.Create(c.Request().Context(), resolved, models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "Order created successfully",
		"payable":      result.Payable,
		"ledgerEntry":  result.Ledger,
		"gatewayOrder": result.GatewayOrder,
	})
}

type shippingAddressRequest struct {
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phone_number"`
}

type verifyOrderRequest struct {
	PayableID        uint                    `json:"payable_id" validate:"required"`
	PayableType      string                  `json:"payable_type" validate:"required,oneof=PRODUCT_ORDER PLAN_ORDER"`
	GatewayOrderID   string                  `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string                  `json:"gateway_payment_id" validate:"required"`
	GatewaySignature string                  `json:"gateway_signature" validate:"required"`
	ShippingAddress  *shippingAddressRequest `json:"shipping_address"`
}

// VerifyOrder consumes the gateway confirmation for an order. Product
// orders persist the shipping address in the same transaction.
func (h *OrderHandler) VerifyOrder(c echo.Context) error {
	req := new(verifyOrderRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	userID := getUintFromContext(c, middleware.ContextUserID)

	var addr *models.ShippingAddress
	if req.ShippingAddress != nil {
		addr = &models.ShippingAddress{
			AddressLine1: req.ShippingAddress.AddressLine1,
			AddressLine2: req.ShippingAddress.AddressLine2,
			City:         req.ShippingAddress.City,
			State:        req.ShippingAddress.State,
			PostalCode:   req.ShippingAddress.PostalCode,
			Country:      req.ShippingAddress.Country,
			PhoneNumber:  req.ShippingAddress.PhoneNumber,
		}
	}

	payableID, err := h.engine.Verify(c.Request().Context(), &reconcile.VerifyRequest{
		PayableID:        req.PayableID,
		PayableType:      models.PayableType(req.PayableType),
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
		UserID:           userID,
		ShippingAddress:  addr,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Payment verified successfully",
		Data:    payableID,
	})
}

// ListOrders returns the caller's orders, or all orders for admins
func (h *OrderHandler) ListOrders(c echo.Context) error {
	query := h.db.Model(&models.Order{}).Preload("Items")

	if getStringFromContext(c, middleware.ContextUserRole) != models.RoleAdmin {
		query = query.Where("user_id = ?", getUintFromContext(c, middleware.ContextUserID))
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: orders})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "order"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: order})
}

// DeleteOrder removes an order unless its payment attempt is still open
// or captured. The payable type tag decides which ledger entries guard
// it.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.db.First(&order, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "order"}
	}

	payableType := models.PayableTypePlanOrder
	if order.OrderableType == models.OrderableTypeProduct {
		payableType = models.PayableTypeProductOrder
	}

	if err := h.engine.Delete(c.Request().Context(), payableType, uint(id)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Order deleted successfully"})
}
