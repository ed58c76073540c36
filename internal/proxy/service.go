// Package proxy forwards webhook payloads to caller-supplied third-party
// endpoints, so the browser never talks to tracking providers directly.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/aura-funnel-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
)

// ForwardRequest names the upstream target and carries the payload verbatim.
type ForwardRequest struct {
	URL     string          `json:"url" validate:"required,url"`
	Payload json.RawMessage `json:"payload"`
}

// ForwardResult reports what the upstream answered. Body is truncated to the
// configured read limit; it exists for diagnostics, not for relaying.
type ForwardResult struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Service relays payloads upstream.
type Service interface {
	Forward(ctx context.Context, req ForwardRequest) (*ForwardResult, error)
}

type service struct {
	client    *http.Client
	bodyLimit int64
	validate  *validator.Validate
}

func NewService(cfg config.ProxyConfig) (Service, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bodyLimit := cfg.BodyReadLimit
	if bodyLimit <= 0 {
		bodyLimit = 2048
	}
	return &service{
		client:    &http.Client{Timeout: timeout},
		bodyLimit: bodyLimit,
		validate:  validator.New(),
	}, nil
}

func (s *service) Forward(ctx context.Context, req ForwardRequest) (*ForwardResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid proxy payload")
	}

	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "building upstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "forwarding webhook upstream")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.bodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "reading upstream response")
	}

	result := &ForwardResult{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, pkgerrors.New(pkgerrors.CodeUpstream,
			fmt.Sprintf("upstream responded %d: %s", resp.StatusCode, result.Body))
	}
	return result, nil
}
