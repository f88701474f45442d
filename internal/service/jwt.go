package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AdminTokens выпускает и проверяет HS256-токены администраторов HTTP API
type AdminTokens struct {
	secret   []byte
	adminIDs map[int64]bool
}

func NewAdminTokens(secret string, adminIDs []int64) *AdminTokens {
	ids := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = true
	}
	return &AdminTokens{secret: []byte(secret), adminIDs: ids}
}

// IsAdmin - есть ли пользователь Telegram в списке админов
func (a *AdminTokens) IsAdmin(userID int64) bool {
	return a.adminIDs[userID]
}

// Issue - токен для админа на ttl
func (a *AdminTokens) Issue(adminID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(adminID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "teamgame_bot",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseJWT проверяет подпись, срок и то, что subject - известный админ
func (a *AdminTokens) ParseJWT(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("teamgame_bot"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	adminID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if !a.IsAdmin(adminID) {
		return 0, fmt.Errorf("%w: %d is not an admin", ErrInvalidToken, adminID)
	}
	return adminID, nil
}
