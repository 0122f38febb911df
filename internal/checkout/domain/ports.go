package domain

import "context"

// CreateSessionRequest 创建托管支付会话的参数
type CreateSessionRequest struct {
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// PaymentGateway 支付网关端口
type PaymentGateway interface {
	// CreateSession 创建托管支付会话
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
	// RetrieveSession 按 ID 回查会话
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	// VerifyWebhook 校验回调签名并返回原始事件体；签名不合法时返回 ErrInvalidSignature
	VerifyWebhook(payload []byte, signature string) error
}

// PendingSessionRepository 待确认支付会话存储，按浏览器会话暂存网关会话 ID
type PendingSessionRepository interface {
	// Stash 记录浏览器会话发起的支付会话 ID
	Stash(ctx context.Context, browserSessionID, checkoutSessionID string) error
	// Pop 取出并删除暂存的支付会话 ID，单次有效；不存在时返回 ErrSessionNotFound
	Pop(ctx context.Context, browserSessionID string) (string, error)
}
