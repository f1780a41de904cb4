package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectFromToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, tokenString, err := svc.JWTAuth().Encode(map[string]interface{}{
		"user_id": "admin-7",
		"type":    "access",
	})
	require.NoError(t, err)

	subject, err := svc.SubjectFromToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "admin-7", subject)
}

func TestSubjectFromToken_MissingClaim(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, tokenString, err := svc.JWTAuth().Encode(map[string]interface{}{
		"type": "access",
	})
	require.NoError(t, err)

	_, err = svc.SubjectFromToken(tokenString)
	assert.Error(t, err)
}

func TestSubjectFromToken_WrongSecret(t *testing.T) {
	minter := NewJWTService("other-secret")
	_, tokenString, err := minter.JWTAuth().Encode(map[string]interface{}{
		"user_id": "admin-7",
		"type":    "access",
	})
	require.NoError(t, err)

	svc := NewJWTService("test-secret")
	_, err = svc.SubjectFromToken(tokenString)
	assert.Error(t, err)
}
