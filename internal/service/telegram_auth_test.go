package service

import (
	"encoding/hex"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// создает валидную строку init_data тем же алгоритмом, что и проверка
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	vals := url.Values{}
	for k, v := range fields {
		vals.Set(k, v)
	}
	hash := hex.EncodeToString(signInitData(vals, botToken))
	vals.Set("hash", hash)
	return vals.Encode()
}

func TestValidateTelegramInitData_Valid(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F","last_name":"L"}`,
	}

	vals, ok := ValidateTelegramInitData(buildInitData(t, botToken, fields), botToken)
	require.True(t, ok, "ожидалась валидная init data")

	p, err := InitDataPlayer(vals)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "F L", p.DisplayName())
}

func TestValidateTelegramInitData_Tampered(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}

	// дополнительное поле ломает хэш
	tampered := buildInitData(t, botToken, fields) + "&x=1"
	_, ok := ValidateTelegramInitData(tampered, botToken)
	assert.False(t, ok)

	_, ok = ValidateTelegramInitData(buildInitData(t, botToken, fields), "other-token")
	assert.False(t, ok)
}

func TestValidateTelegramInitData_Expired(t *testing.T) {
	botToken := "test-bot-token"
	issued := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	initData := buildInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(issued.Unix(), 10),
		"user":      `{"id":1,"first_name":"F"}`,
	})

	_, ok := validateInitDataAt(initData, botToken, issued.Add(30*time.Minute))
	assert.True(t, ok)
	_, ok = validateInitDataAt(initData, botToken, issued.Add(2*time.Hour))
	assert.False(t, ok)
}

func TestInitDataPlayer_Missing(t *testing.T) {
	_, err := InitDataPlayer(url.Values{"user": {`{"first_name":"NoID"}`}})
	assert.ErrorIs(t, err, ErrInitDataUser)
}
