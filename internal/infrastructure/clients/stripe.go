package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"shop/internal/entities"
)

// ErrInvalidSignature is returned when a webhook body fails verification
// against the shared endpoint secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// signatureTolerance bounds how old a signed webhook timestamp may be.
const signatureTolerance = 5 * time.Minute

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string // defaults to the public API, overridable for tests
}

// StripeClient is a thin REST client for the two Stripe interactions the
// checkout needs: payment-intent lookup and webhook signature verification.
type StripeClient struct {
	config  StripeConfig
	client  *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

func NewStripeClient(config StripeConfig, logger zerolog.Logger) *StripeClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}

	return &StripeClient{
		config:  config,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "stripe",
			Timeout: 30 * time.Second,
		}),
		logger: logger,
	}
}

// PaymentIntent is the subset of Stripe's payment-intent object we read.
type PaymentIntent struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Metadata      map[string]string `json:"metadata"`
	PaymentMethod *PaymentMethod    `json:"payment_method"`
}

type PaymentMethod struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type stripeError struct {
	Err struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetPaymentIntent retrieves a payment intent with its payment method
// expanded. Transient failures are retried with exponential backoff behind a
// circuit breaker; 4xx responses are not retried.
func (c *StripeClient) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var intent *PaymentIntent

	operation := func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.getPaymentIntent(ctx, id)
		})
		if err != nil {
			var permanent *permanentError
			if errors.As(err, &permanent) {
				return backoff.Permanent(permanent.err)
			}
			return err
		}
		intent = result.(*PaymentIntent)
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", id, err)
	}
	return intent, nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (c *StripeClient) getPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	reqURL := fmt.Sprintf("%s/v1/payment_intents/%s?%s",
		c.baseURL, url.PathEscape(id), url.Values{"expand[]": {"payment_method"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("stripe API error (status %d): %s", resp.StatusCode, stripeErrorMessage(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, &permanentError{err: apiErr}
		}
		return nil, apiErr
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}
	return &intent, nil
}

func stripeErrorMessage(body []byte) string {
	var e stripeError
	if err := json.Unmarshal(body, &e); err != nil || e.Err.Message == "" {
		return string(body)
	}
	return e.Err.Message
}

// PaymentMethodFamily resolves whether a payment went through PayPal or a
// native Stripe method. Lookup failures degrade to the stripe default
// instead of failing the checkout; precision is traded for availability.
func (c *StripeClient) PaymentMethodFamily(ctx context.Context, paymentReference string) entities.PaymentMethod {
	intent, err := c.GetPaymentIntent(ctx, paymentReference)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("payment_reference", paymentReference).
			Msg("payment method lookup failed, defaulting to stripe")
		return entities.PaymentMethodStripe
	}

	if intent.PaymentMethod != nil && intent.PaymentMethod.Type == "paypal" {
		return entities.PaymentMethodPayPal
	}
	return entities.PaymentMethodStripe
}

// VerifyWebhookSignature checks a Stripe-Signature header (v1 scheme:
// HMAC-SHA256 over "<timestamp>.<raw body>") against the endpoint secret.
func (c *StripeClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	return verifySignature(payload, sigHeader, c.config.WebhookSecret, time.Now())
}

func verifySignature(payload []byte, sigHeader, secret string, now time.Time) error {
	var timestamp string
	var candidates []string

	for _, part := range strings.Split(sigHeader, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
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
		return fmt.Errorf("%w: malformed signature header", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
