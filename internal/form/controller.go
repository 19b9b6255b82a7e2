// Package form implements the page-view state machine behind the shortening form.
//
// A Controller moves between Idle, Loading, ResultShown and ErrorShown.
// Submit drives exactly one call to the Shortening Service; while it is in
// flight the submit control is disabled and further submissions are refused.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/MikhailRaia/shortener-form/internal/client"
	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/rs/zerolog/log"
)

// MessageEmptyInput is shown when the submitted input is blank.
const MessageEmptyInput = "Please enter a URL"

// ErrSubmitDisabled is returned by Submit while a previous submission is in flight.
var ErrSubmitDisabled = errors.New("submit is disabled while a request is in flight")

// ValidationError is a local input error that never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Shortener is the outbound collaborator, normally *client.Client.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*model.SubmissionResponse, error)
}

// Controller owns the form state of a single page view. It is safe for concurrent use.
type Controller struct {
	shortener Shortener

	mu         sync.Mutex
	state      State
	input      string
	result     *model.SubmissionResponse
	errMessage string
	inFlight   bool
	generation uint64
}

// NewController creates an Idle controller.
func NewController(shortener Shortener) *Controller {
	return &Controller{
		shortener: shortener,
		state:     StateIdle,
	}
}

// Submit trims rawInput and asks the service to shorten it.
//
// Blank input fails with *ValidationError without a network call. Service
// failures are returned as the shortener reported them; the view shows
// MessageFor(err). A Submit made while another one is in flight returns
// ErrSubmitDisabled and leaves the view untouched.
func (c *Controller) Submit(ctx context.Context, rawInput string) (*model.SubmissionResponse, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmitDisabled
	}

	c.input = rawInput
	c.result = nil
	c.errMessage = ""

	target := strings.TrimSpace(rawInput)
	if target == "" {
		c.state = StateErrorShown
		c.errMessage = MessageEmptyInput
		c.mu.Unlock()
		return nil, &ValidationError{Message: MessageEmptyInput}
	}

	c.state = StateLoading
	c.inFlight = true
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	resp, err := c.shortener.Shorten(ctx, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false
	if gen != c.generation {
		log.Debug().Str("url", target).Msg("Submission finished after reset, result discarded")
		return resp, err
	}

	if err != nil {
		c.state = StateErrorShown
		c.errMessage = MessageFor(err)
		log.Debug().Err(err).Str("url", target).Msg("Submission failed")
		return nil, err
	}

	result := *resp
	c.state = StateResultShown
	c.result = &result
	log.Debug().Str("url", target).Str("short_url", result.ShortURL).Msg("Submission succeeded")

	return resp, nil
}

// Reset returns to Idle with empty input and no result or error panel.
// A submission still in flight runs to completion but its outcome is not shown,
// and the submit control stays disabled until it returns.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateIdle
	c.input = ""
	c.result = nil
	c.errMessage = ""
	c.generation++
}

// DismissError hides the error panel and keeps the input. It is a no-op in other states.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateErrorShown {
		return
	}

	c.state = StateIdle
	c.errMessage = ""
}

// View returns a snapshot of what the page should render.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:          c.state,
		Input:          c.input,
		SubmitDisabled: c.inFlight,
		ErrorMessage:   c.errMessage,
	}

	if c.result != nil {
		result := *c.result
		v.Result = &result
		v.CopyFocused = true
	}

	return v
}

// MessageFor maps an error from Submit to the text shown to the user.
func MessageFor(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var svcErr *client.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}

	return client.DefaultErrorMessage
}
