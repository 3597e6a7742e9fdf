package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var ErrNoJSONObject = errors.New("no JSON object in completion")

// GatewayError is returned for any failed completion: transport, timeout or an unusable
// reply. Model identifies which model was asked.
type GatewayError struct {
	Model string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("llm call to %s failed: %v", e.Model, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Gateway sends prompts to the completion backend in JSON mode and hands back the first
// JSON object found in the reply.
type Gateway struct {
	completer   service.CompletionServiceInterface
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
}

// NewGateway builds a gateway. A non-positive rps disables throttling and a non-positive
// timeout leaves the caller's deadline in charge.
func NewGateway(completer service.CompletionServiceInterface, temperature float64, timeout time.Duration, rps float64) *Gateway {
	g := &Gateway{
		completer:   completer,
		temperature: temperature,
		timeout:     timeout,
	}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return g
}

// Call never panics on a bad reply; every failure comes back as a *GatewayError.
func (g *Gateway) Call(ctx context.Context, prompt, model string) (gjson.Result, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return gjson.Result{}, &GatewayError{Model: model, Err: err}
		}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.completer.Complete(callCtx, service.CompletionRequest{
		Prompt:      prompt,
		Model:       model,
		Temperature: g.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return gjson.Result{}, &GatewayError{Model: model, Err: err}
	}

	span, ok := ExtractJSONObject(text)
	if !ok {
		return gjson.Result{}, &GatewayError{Model: model, Err: ErrNoJSONObject}
	}
	if !gjson.Valid(span) {
		return gjson.Result{}, &GatewayError{Model: model, Err: fmt.Errorf("malformed JSON object: %.120q", span)}
	}
	return gjson.Parse(span), nil
}
