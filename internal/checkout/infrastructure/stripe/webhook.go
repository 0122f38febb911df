package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/wyfcoding/marketplace/internal/checkout/domain"
)

// 签名时间戳与当前时间的最大偏差
const signatureTolerance = 5 * time.Minute

// VerifyWebhook 校验 Stripe-Signature 头。签名格式为 `t=<unix>,v1=<hex hmac>`，
// HMAC-SHA256 的消息是 `<timestamp>.<payload>`。
func (c *Client) VerifyWebhook(payload []byte, signature string) error {
	return c.verifyWebhookAt(payload, signature, time.Now())
}

func (c *Client) verifyWebhookAt(payload []byte, signature string, now time.Time) error {
	var (
		timestamp  string
		candidates []string
	)
	for _, part := range strings.Split(signature, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return domain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	if d := now.Sub(time.Unix(ts, 0)); d > signatureTolerance || d < -signatureTolerance {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}
