package user_models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("maya@example.com", "s3cret-pass", "Maya", "Tamang", "customer")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "customer", u.Role)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.Nil(t, u.Phone)
}

func TestCheckPassword(t *testing.T) {
	u, err := NewUser("maya@example.com", "s3cret-pass", "Maya", "Tamang", "customer")
	require.NoError(t, err)

	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.False(t, u.CheckPassword(""))
}
