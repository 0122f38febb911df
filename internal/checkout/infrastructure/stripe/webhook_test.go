package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/marketplace/internal/checkout/domain"
)

const testSecret = "whsec_test"

func sign(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhook(t *testing.T) {
	c := &Client{webhookSecret: testSecret}
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"type":"checkout.session.completed"}`)

	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(testSecret, now.Unix(), payload))
	require.NoError(t, c.verifyWebhookAt(payload, header, now))

	t.Run("wrong secret", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign("whsec_other", now.Unix(), payload))
		assert.ErrorIs(t, c.verifyWebhookAt(payload, header, now), domain.ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(testSecret, now.Unix(), payload))
		err := c.verifyWebhookAt([]byte(`{"type":"other"}`), header, now)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := now.Add(-10 * time.Minute)
		header := fmt.Sprintf("t=%d,v1=%s", old.Unix(), sign(testSecret, old.Unix(), payload))
		assert.ErrorIs(t, c.verifyWebhookAt(payload, header, now), domain.ErrInvalidSignature)
	})

	t.Run("multiple v1 candidates", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), sign(testSecret, now.Unix(), payload))
		assert.NoError(t, c.verifyWebhookAt(payload, header, now))
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.ErrorIs(t, c.verifyWebhookAt(payload, "garbage", now), domain.ErrInvalidSignature)
		assert.ErrorIs(t, c.verifyWebhookAt(payload, "", now), domain.ErrInvalidSignature)
		assert.ErrorIs(t, c.verifyWebhookAt(payload, "t=abc,v1=ff", now), domain.ErrInvalidSignature)
	})
}
