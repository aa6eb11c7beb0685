package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/config"
)

// StripeService talks to the Stripe PaymentIntents API. It implements
// PaymentProvider.
type StripeService struct {
	config *config.StripeConfig
	logger *logrus.Logger
	client *http.Client
}

// stripeIntent is the subset of Stripe's PaymentIntent object we read
type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// stripeErrorResponse is Stripe's error envelope
type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewStripeService creates a new Stripe payment provider client
func NewStripeService(cfg *config.StripeConfig, logger *logrus.Logger) *StripeService {
	return &StripeService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreatePaymentIntent creates a PaymentIntent for a card charge
func (s *StripeService) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Add("payment_method_types[]", "card")
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	s.logger.WithFields(logrus.Fields{
		"amount":   amount,
		"currency": currency,
	}).Debug("Creating Stripe payment intent")

	intent, err := s.do(http.MethodPost, "/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil
}

// RetrieveIntent fetches the authoritative state of a PaymentIntent
func (s *StripeService) RetrieveIntent(intentID string) (*PaymentIntent, error) {
	intent, err := s.do(http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil)
	if err != nil {
		return nil, err
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil
}

func (s *StripeService) do(method, path string, body io.Reader) (*stripeIntent, error) {
	req, err := http.NewRequest(method, s.config.APIURL+path, body)
	if err != nil {
		return nil, apperrors.PaymentProvider("failed to build provider request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.PaymentProvider("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.PaymentProvider("failed to read provider response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var stripeErr stripeErrorResponse
		message := fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)
		if err := json.Unmarshal(respBody, &stripeErr); err == nil && stripeErr.Error.Message != "" {
			message = stripeErr.Error.Message
		}
		s.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"error_type":  stripeErr.Error.Type,
		}).Error("Stripe request failed")
		return nil, apperrors.PaymentProvider(message, nil)
	}

	var intent stripeIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, apperrors.PaymentProvider("failed to decode provider response", err)
	}

	return &intent, nil
}
