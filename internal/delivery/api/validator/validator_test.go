package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Email string `json:"email" validate:"required,email"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&signupRequest{Name: "Ada", Email: "ada@example.com"}))

	err := v.Validate(&signupRequest{Email: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email address")
}
