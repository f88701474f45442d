package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokens(t *testing.T) {
	tokens := NewAdminTokens("secret", []int64{7})

	tok, err := tokens.Issue(7, time.Hour)
	require.NoError(t, err)
	id, err := tokens.ParseJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	// не админ
	tok, err = tokens.Issue(8, time.Hour)
	require.NoError(t, err)
	_, err = tokens.ParseJWT(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// истекший
	tok, err = tokens.Issue(7, -time.Minute)
	require.NoError(t, err)
	_, err = tokens.ParseJWT(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// чужой секрет
	tok, err = NewAdminTokens("other", []int64{7}).Issue(7, time.Hour)
	require.NoError(t, err)
	_, err = tokens.ParseJWT(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminTokens_RequiresExpiration(t *testing.T) {
	tokens := NewAdminTokens("secret", []int64{7})

	// подпись и админ верные, но exp нет
	claims := jwt.RegisteredClaims{Subject: "7", Issuer: "teamgame_bot"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = tokens.ParseJWT(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminTokens_IsAdmin(t *testing.T) {
	tokens := NewAdminTokens("secret", []int64{7, 9})
	assert.True(t, tokens.IsAdmin(7))
	assert.True(t, tokens.IsAdmin(9))
	assert.False(t, tokens.IsAdmin(8))
}
