package services

import (
	"context"
	"fmt"
	"os"

	razorpay "github.com/razorpay/razorpay-go"

	"medimart_api/internal/reconcile"
)

// RazorpayService wraps the Razorpay SDK and implements
// reconcile.Gateway. The SDK has no context support, so calls run in a
// goroutine and the context deadline is enforced on our side.
type RazorpayService struct {
	client *razorpay.Client
}

func NewRazorpayService() *RazorpayService {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	return &RazorpayService{
		client: razorpay.NewClient(keyID, keySecret),
	}
}

// CreateOrder mints a remote order for the given amount in minor units
func (s *RazorpayService) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*reconcile.GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":          amountMinor,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	type orderResult struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan orderResult, 1)
	go func() {
		body, err := s.client.Order.Create(data, nil)
		ch <- orderResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("razorpay create order: %w", res.err)
		}
		id, _ := res.body["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("razorpay create order: response missing order id")
		}
		return &reconcile.GatewayOrder{
			ID:       id,
			Amount:   amountMinor,
			Currency: currency,
			Receipt:  receipt,
		}, nil
	}
}
