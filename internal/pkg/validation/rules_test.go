package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("asha_rao"))
	assert.True(t, IsValidUsername("a.b.c"))
	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername(".hidden"))
	assert.False(t, IsValidUsername("has space"))
	assert.False(t, IsValidUsername("emoji😀x"))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("abcdefg1"))
	assert.False(t, IsStrongPassword("abcdefgh"))
	assert.False(t, IsStrongPassword("12345678"))
	assert.False(t, IsStrongPassword("abc1"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "asha@example.org", NormalizeEmail("  Asha@Example.ORG "))
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type payload struct {
		Username string `validate:"username"`
		Password string `validate:"password"`
		Role     string `validate:"role"`
	}

	assert.NoError(t, v.Struct(payload{Username: "asha", Password: "passw0rd", Role: "member"}))

	err := v.Struct(payload{Username: "a", Password: "password", Role: "owner"})
	require.Error(t, err)
	assert.Len(t, err.(validator.ValidationErrors), 3)
}
