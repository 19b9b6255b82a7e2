// Package client talks to the Shortening Service over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// DefaultErrorMessage is shown when the service gives no usable error text.
const DefaultErrorMessage = "Failed to shorten URL"

const defaultStatsMessage = "Failed to load stats"

// ServiceError describes a failed call: a non-2xx answer or a transport failure.
// Message is what the user sees.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("shortening service returned %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Client is a resty-backed client for the Shortening Service.
type Client struct {
	rest *resty.Client
}

// New creates a client for the service at baseURL. Requests are never retried.
func New(baseURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{rest: rest}
}

// Shorten posts {"url": rawURL} to /shorten. Any failure is returned as *ServiceError.
func (c *Client) Shorten(ctx context.Context, rawURL string) (*model.SubmissionResponse, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(model.SubmissionRequest{URL: rawURL}).
		Post("/shorten")
	if err != nil {
		log.Warn().Err(err).Msg("Shortening service unreachable")
		return nil, &ServiceError{Message: DefaultErrorMessage, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, failure(resp, DefaultErrorMessage)
	}

	var result model.SubmissionResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil || result.ShortURL == "" {
		if err == nil {
			err = errors.New("response has no short_url")
		}
		return nil, &ServiceError{StatusCode: resp.StatusCode(), Message: DefaultErrorMessage, Err: err}
	}

	return &result, nil
}

// Stats reads the click statistics of a short code.
func (c *Client) Stats(ctx context.Context, code string) (*model.StatsResponse, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get("/stats/" + url.PathEscape(code))
	if err != nil {
		return nil, &ServiceError{Message: defaultStatsMessage, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, failure(resp, defaultStatsMessage)
	}

	var stats model.StatsResponse
	if err := json.Unmarshal(resp.Body(), &stats); err != nil {
		return nil, &ServiceError{StatusCode: resp.StatusCode(), Message: defaultStatsMessage, Err: err}
	}

	return &stats, nil
}

func failure(resp *resty.Response, fallback string) *ServiceError {
	svcErr := &ServiceError{StatusCode: resp.StatusCode(), Message: fallback}

	var body model.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		svcErr.Err = err
		return svcErr
	}

	if body.Error != "" {
		svcErr.Message = body.Error
	}

	return svcErr
}
