package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		expectedCode  string
		expectedRetry int
	}{
		{
			name:          "catalog unavailable is retried",
			err:           NewCatalogUnavailableError(fmt.Errorf("store empty")),
			expectedCode:  "CATALOG_UNAVAILABLE",
			expectedRetry: 3,
		},
		{
			name:          "invalid catalog shares the BPMN code but is not retried",
			err:           NewCatalogInvalidError(fmt.Errorf("duplicate product id 7")),
			expectedCode:  "CATALOG_UNAVAILABLE",
			expectedRetry: 0,
		},
		{
			name:          "fallback timeout retried once",
			err:           NewFallbackTimeoutError(context.DeadlineExceeded),
			expectedCode:  "FALLBACK_UNAVAILABLE",
			expectedRetry: 1,
		},
		{
			name:          "invalid input thrown",
			err:           NewInvalidInputError("utterance missing"),
			expectedCode:  "INVALID_INPUT",
			expectedRetry: 0,
		},
		{
			name:          "unmapped code falls through",
			err:           &StandardError{Code: "SOMETHING_ELSE", Message: "x"},
			expectedCode:  "SOMETHING_ELSE",
			expectedRetry: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.expectedCode, bpmn.Code)
			assert.Equal(t, tt.expectedRetry, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.expectedCode, vars["errorCode"])
			assert.Equal(t, tt.err.Retryable, vars["retryable"])
		})
	}
}

func TestStandardError_UnwrapAndMetadata(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewCatalogLoadFailedError("redis", cause).WithMetadata("key", "catalog:snapshot")

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Details, "source: redis")
	assert.Equal(t, "catalog:snapshot", ConvertToBPMNError(err).ErrorVariables["key"])
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("classify: %w", NewInvalidInputError("empty"))
	assert.Equal(t, ErrCodeInvalidInput, Normalize(wrapped).Code)

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
}

func TestRemainingRetries(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), remainingRetries(job(3), 3))
	assert.Equal(t, int32(1), remainingRetries(job(5), 1))
	assert.Equal(t, int32(0), remainingRetries(job(0), 3))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeCatalogLoadFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeFallbackTimeout))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "REVIEW", GetErrorCategory(ErrCodeReviewPublishFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))

	assert.True(t, IsRetryableErrorCode(ErrCodeCatalogUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}

func TestNewCatalogLoadFailedError_RequireFields(t *testing.T) {
	err := NewCatalogLoadFailedError("file", nil)
	require.NotNil(t, err)
	assert.Equal(t, "source: file, error: ", err.Details)
	assert.False(t, err.Timestamp.IsZero())
}
