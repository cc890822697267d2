package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	type sample struct {
		Name  string `validate:"required"`
		Count int    `validate:"gt=0"`
	}

	require.NoError(t, ValidateStruct(sample{Name: "ok", Count: 1}))

	err := ValidateStruct(sample{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "sample.Name", verrs[0].Field)
	assert.Equal(t, "is required", verrs[0].Message)
	assert.Equal(t, "must be greater than 0", verrs[1].Message)
}

func TestConfigValidate_WrapsValidationErrors(t *testing.T) {
	cfg := &Config{
		Analysis: AnalysisConfig{MaxChunkSize: 0, SinglePassThreshold: 30000, Concurrency: 3},
		LLM:      LLMConfig{Provider: "gemini", Model: "m", APIKey: "k", Timeout: 1},
	}

	err := cfg.Validate()
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
	assert.True(t, errors.Is(err, ErrValidation))
}
