package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Code  string `json:"code" validate:"required"`
	Port  int    `mapstructure:"port" validate:"min=1"`
	Inner struct {
		Secret string `mapstructure:"jwt_secret" validate:"min=4"`
	} `mapstructure:"auth"`
}

func TestValidateReportsTaggedNames(t *testing.T) {
	var s sample
	s.Inner.Secret = "x"

	err := New().Validate(&s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code: failed on required")
	assert.Contains(t, err.Error(), "port: failed on min=1")
	assert.Contains(t, err.Error(), "jwt_secret: failed on min=4")
}

func TestValidatePasses(t *testing.T) {
	s := sample{Code: "W1", Port: 80}
	s.Inner.Secret = "long-enough"
	assert.NoError(t, New().Validate(&s))
}

func TestFormatPassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "boom", Format(fmt.Errorf("boom")))
}
