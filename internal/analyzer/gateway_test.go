package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
	err   error
	delay time.Duration
	last  service.CompletionRequest
}

func (s *stubCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	s.last = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func TestGatewayCall_ProseAroundObject(t *testing.T) {
	stub := &stubCompleter{reply: `Sure! Here's the JSON: {"quality_score": 0.8, "red_flags": ["gap"]} Hope that helps!`}
	g := NewGateway(stub, 0.3, time.Second, 0)

	obj, err := g.Call(context.Background(), "prompt", "model-x")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, obj.Get("quality_score").Float(), 1e-9)
	assert.Equal(t, "gap", obj.Get("red_flags.0").String())

	assert.True(t, stub.last.JSONMode)
	assert.Equal(t, "model-x", stub.last.Model)
	assert.InDelta(t, 0.3, stub.last.Temperature, 1e-9)
}

func TestGatewayCall_Failures(t *testing.T) {
	tests := []struct {
		name    string
		stub    *stubCompleter
		timeout time.Duration
		target  error
	}{
		{"backend error", &stubCompleter{err: service.ErrEmptyCompletion}, time.Second, service.ErrEmptyCompletion},
		{"no object", &stubCompleter{reply: "I cannot comply."}, time.Second, ErrNoJSONObject},
		{"timeout", &stubCompleter{reply: `{}`, delay: time.Second}, 10 * time.Millisecond, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(tt.stub, 0, tt.timeout, 0)
			_, err := g.Call(context.Background(), "p", "m")
			var gwErr *GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, "m", gwErr.Model)
			assert.True(t, errors.Is(err, tt.target))
		})
	}
}

func TestGatewayCall_MalformedObject(t *testing.T) {
	g := NewGateway(&stubCompleter{reply: `{"a": [1, 2}`}, 0, time.Second, 0)
	_, err := g.Call(context.Background(), "p", "m")
	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
}

func TestGatewayCall_LimiterHonoursContext(t *testing.T) {
	g := NewGateway(&stubCompleter{reply: `{}`}, 0, time.Second, 0.001)
	_, err := g.Call(context.Background(), "p", "m")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Call(ctx, "p", "m")
	assert.Error(t, err)
}
