package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/renta-rw/renta-backend/shared/utils"
)

// SMSGateway sends reminder messages through the external SMS/email
// provider. A circuit breaker shields the dispatch loop from a dead
// provider.
type SMSGateway struct {
	baseURL    string
	httpClient *http.Client
	breaker    *utils.CircuitBreaker
}

func NewSMSGateway(baseURL string) *SMSGateway {
	return &SMSGateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: utils.NewCircuitBreaker(5, 30*time.Second),
	}
}

type gatewayPayload struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// Send dispatches one message. Returns utils.ErrCircuitOpen without a
// network call while the provider is considered down.
func (g *SMSGateway) Send(channel, recipient, body string) error {
	return g.breaker.Call(func() error {
		payload, err := json.Marshal(gatewayPayload{
			Channel:   channel,
			Recipient: recipient,
			Body:      body,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal gateway payload: %w", err)
		}

		req, err := http.NewRequest(http.MethodPost, g.baseURL+"/messages", bytes.NewBuffer(payload))
		if err != nil {
			return fmt.Errorf("failed to create gateway request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach sms gateway: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
		}
		return nil
	})
}

// State exposes the breaker state for the stats endpoint.
func (g *SMSGateway) State() utils.CircuitState {
	return g.breaker.GetState()
}
