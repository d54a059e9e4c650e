package services_test

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"checkout-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte, at time.Time, secret string) string {
	t.Helper()
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func eventPayload(sessionJSON string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_test_sig","api_version":%q,"type":"checkout.session.completed","data":{"object":%s}}`,
		stripe.APIVersion, sessionJSON,
	))
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	svc := services.NewStripeService("sk_test_key", testWebhookSecret, 15*time.Second)
	payload := eventPayload(`{"id":"cs_test_1","amount_total":1900,"currency":"eur","payment_status":"paid"}`)

	event, err := svc.VerifyWebhook(payload, signedHeader(t, payload, time.Now(), testWebhookSecret))

	require.NoError(t, err)
	assert.Equal(t, "evt_test_sig", event.ID)
	assert.Equal(t, "checkout.session.completed", string(event.Type))
}

func TestVerifyWebhook_TamperedBody(t *testing.T) {
	svc := services.NewStripeService("sk_test_key", testWebhookSecret, 15*time.Second)
	payload := eventPayload(`{"id":"cs_test_1","amount_total":1900,"currency":"eur","payment_status":"paid"}`)
	header := signedHeader(t, payload, time.Now(), testWebhookSecret)

	tampered := eventPayload(`{"id":"cs_test_1","amount_total":1,"currency":"eur","payment_status":"paid"}`)
	_, err := svc.VerifyWebhook(tampered, header)

	assert.Error(t, err)
}

func TestVerifyWebhook_WrongSecret(t *testing.T) {
	svc := services.NewStripeService("sk_test_key", testWebhookSecret, 15*time.Second)
	payload := eventPayload(`{"id":"cs_test_1"}`)

	_, err := svc.VerifyWebhook(payload, signedHeader(t, payload, time.Now(), "whsec_other"))

	assert.Error(t, err)
}
