// Package stripe 是支付网关端口的 Stripe Hosted Checkout 适配器
package stripe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wyfcoding/marketplace/internal/checkout/domain"
	"github.com/wyfcoding/marketplace/pkg/config"
)

type sessionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"`
	Status        string            `json:"status"`
	Metadata      map[string]string `json:"metadata"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client 通过 Stripe REST API 实现 PaymentGateway
type Client struct {
	http          *resty.Client
	webhookSecret string
}

// NewClient 创建 Stripe 客户端
func NewClient(cfg config.PaymentConfig) *Client {
	// 支付调用一律单次尝试，不做自动重试
	httpClient := resty.New().
		SetBaseURL(cfg.APIBase).
		SetAuthToken(cfg.SecretKey).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	return &Client{http: httpClient, webhookSecret: cfg.WebhookSecret}
}

// CreateSession 创建托管支付会话。请求体为 Stripe 的表单编码格式。
func (c *Client) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (*domain.Session, error) {
	form := map[string]string{
		"mode":                    "payment",
		"payment_method_types[0]": "card",
		"success_url":             req.SuccessURL,
		"cancel_url":              req.CancelURL,
	}
	if req.CustomerEmail != "" {
		form["customer_email"] = req.CustomerEmail
	}
	for i, item := range req.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form[prefix+"[price_data][currency]"] = item.Currency
		form[prefix+"[price_data][product_data][name]"] = item.Name
		form[prefix+"[price_data][unit_amount]"] = strconv.FormatInt(item.UnitAmount, 10)
		form[prefix+"[quantity]"] = strconv.Itoa(item.Quantity)
	}
	for k, v := range req.Metadata {
		form[fmt.Sprintf("metadata[%s]", k)] = v
	}

	var (
		out    sessionResponse
		apiErr errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create checkout session: %s (http %d)", apiErr.Error.Message, resp.StatusCode())
	}
	return toSession(&out), nil
}

// RetrieveSession 按 ID 回查会话
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var (
		out    sessionResponse
		apiErr errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/checkout/sessions/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("retrieve checkout session: %s (http %d)", apiErr.Error.Message, resp.StatusCode())
	}
	return toSession(&out), nil
}

func toSession(r *sessionResponse) *domain.Session {
	return &domain.Session{
		ID:            r.ID,
		URL:           r.URL,
		PaymentIntent: r.PaymentIntent,
		AmountTotal:   r.AmountTotal,
		Status:        r.Status,
		Metadata:      r.Metadata,
	}
}
