// Package parser calls a generative-AI endpoint that turns free text
// like "coffee 4.50 yesterday, salary 3000 on the 1st" into structured
// transaction candidates.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ParsedTransaction is one candidate extracted from free text.
type ParsedTransaction struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Typed client errors.
var (
	ErrUnreachable     = errors.New("parser: endpoint unreachable")
	ErrTimeout         = errors.New("parser: request timed out")
	ErrInvalidResponse = errors.New("parser: invalid response")
)

const instruction = `Extract financial transactions from the user text. ` +
	`Respond with a JSON array of objects with keys "type" (INCOME or EXPENSE), ` +
	`"amount" (decimal string), "description" and "date" (YYYY-MM-DD). ` +
	`Respond with the JSON array only.`

// Config holds client options.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client is a JSON-over-HTTP client for the parsing endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model       string `json:"model,omitempty"`
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
}

type generateResponse struct {
	Output string `json:"output"`
}

// Parse submits the text with the fixed instruction prompt and decodes the
// returned JSON array.
func (c *Client) Parse(ctx context.Context, text string) ([]ParsedTransaction, error) {
	body, err := json.Marshal(generateRequest{
		Model:       c.cfg.Model,
		Instruction: instruction,
		Input:       text,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, payload)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var parsed []ParsedTransaction
	if err := json.Unmarshal([]byte(gen.Output), &parsed); err != nil {
		return nil, fmt.Errorf("%w: output is not a transaction array", ErrInvalidResponse)
	}
	for _, p := range parsed {
		if p.Type != "INCOME" && p.Type != "EXPENSE" {
			return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidResponse, p.Type)
		}
	}
	return parsed, nil
}
