package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

// OrderClient submits placed orders and status changes to the order-management API.
type OrderClient struct {
	*client
}

// NewOrderClient builds an order API client. opts.Name defaults to "order_api".
func NewOrderClient(opts Options) (*OrderClient, error) {
	if opts.Name == "" {
		opts.Name = "order_api"
	}
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &OrderClient{client: c}, nil
}

// SubmitOrder posts the order with Idempotency-Key set to the order id, so retries are safe.
// A 409 means the upstream holds a different order under the same id.
func (c *OrderClient) SubmitOrder(ctx context.Context, payload domain.OrderPayload) error {
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		return errors.New("order_api submit: order id is required")
	}
	resp, err := c.execute(ctx, "submit", func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("Content-Type", "application/json").
			SetHeader(idempotencyHeader, orderID).
			SetBody(payload).
			Post("/orders")
	})
	if err != nil {
		return err
	}
	switch status := resp.StatusCode(); {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusConflict:
		return repositories.NewError("order_api.submit", repositories.ErrorKindConflict, c.statusError("submit", resp))
	default:
		return c.statusError("submit", resp)
	}
}

// NotifyStatus posts a lifecycle change to /orders/{orderId}/status.
func (c *OrderClient) NotifyStatus(ctx context.Context, payload domain.StatusUpdatePayload) error {
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		return errors.New("order_api notify: order id is required")
	}
	resp, err := c.execute(ctx, "notify_status", func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("Content-Type", "application/json").
			SetHeader(idempotencyHeader, fmt.Sprintf("%s:%s", orderID, payload.NewStatus)).
			SetPathParam("orderId", orderID).
			SetBody(payload).
			Post("/orders/{orderId}/status")
	})
	if err != nil {
		return err
	}
	switch status := resp.StatusCode(); {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return repositories.NewError("order_api.notify_status", repositories.ErrorKindNotFound, c.statusError("notify_status", resp))
	default:
		return c.statusError("notify_status", resp)
	}
}
