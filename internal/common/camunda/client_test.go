package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/common/config"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name          string
		errs          []error
		expectedCalls int
		expectedErr   error
	}{
		{
			name:          "succeeds first time",
			errs:          []error{nil},
			expectedCalls: 1,
		},
		{
			name:          "retries transient then succeeds",
			errs:          []error{errors.New("rpc error: code = Unavailable"), nil},
			expectedCalls: 2,
		},
		{
			name:          "gives up after max retries",
			errs:          []error{errors.New("connection refused"), errors.New("connection refused"), errors.New("connection refused")},
			expectedCalls: 3,
			expectedErr:   ErrBrokerUnavailable,
		},
		{
			name:          "does not retry permission errors",
			errs:          []error{errors.New("permission denied")},
			expectedCalls: 1,
			expectedErr:   ErrBrokerRejected,
		},
		{
			name:          "maps deadline to timeout",
			errs:          []error{errors.New("context deadline exceeded"), errors.New("context deadline exceeded"), errors.New("context deadline exceeded")},
			expectedCalls: 3,
			expectedErr:   ErrBrokerTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
				err := tt.errs[calls]
				calls++
				return "ok", err
			}, "topology")

			assert.Equal(t, tt.expectedCalls, calls)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := testClient()
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, errors.New("unavailable")
	}, "topology")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Plaintext:      true,
		Timeout:        1500,
		RequestTimeout: 3000,
	})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 1500*time.Millisecond, cfg.ConnectionTimeout)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

type countingHandler struct{ calls int }

func (h *countingHandler) Handle(worker.JobClient, entities.Job) { h.calls++ }

func TestInstrument(t *testing.T) {
	h := &countingHandler{}
	wrapped := Instrument("classify-utterance", h)

	wrapped(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1}})
	assert.Equal(t, 1, h.calls)
}
