package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user123", "user@example.com", []Role{RoleCustomer, RoleSalesManager})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	actor, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user123", actor.UserID)
	assert.Equal(t, "user@example.com", actor.Email)
	assert.True(t, actor.IsCustomer())
	assert.True(t, actor.IsSalesManager())
	assert.False(t, actor.IsProductManager())
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorPredicates(t *testing.T) {
	actor := Actor{UserID: "user123", Roles: []Role{RoleProductManager}}

	assert.True(t, actor.IsProductManager())
	assert.False(t, actor.IsCustomer())
	assert.True(t, actor.IsOwner("user123"))
	assert.False(t, actor.IsOwner("user999"))
	assert.True(t, actor.HasRole(RoleProductManager))
	assert.False(t, actor.HasRole(RoleSalesManager))
}
