package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"teamgame_bot/internal/domain"
)

var ErrInitDataUser = errors.New("init data has no valid user")

// проверяет HMAC Telegram WebApp init_data и убеждается,
// что auth_date недавний (в течение 1 часа) для предотвращения replay-атак
func ValidateTelegramInitData(initData, botToken string) (url.Values, bool) {
	return validateInitDataAt(initData, botToken, time.Now())
}

func validateInitDataAt(initData, botToken string, now time.Time) (url.Values, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, false
	}
	values.Del("hash")

	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(signInitData(values, botToken), provided) {
		return nil, false
	}

	// проверка актуальности: требуем auth_date в течение последнего часа
	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, false
	}
	// разрешаем небольшую рассинхронизацию часов, но отклоняем всё старше 1 часа
	ts := now.Unix()
	if ts-authDate > 3600 || authDate-ts > 300 {
		return nil, false
	}

	return values, true
}

// HMAC data-check-string; Telegram WebApp использует ключ "WebAppData"
func signInitData(values url.Values, botToken string) []byte {
	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}
	sort.Strings(dataCheck)
	dataString := strings.Join(dataCheck, "\n")

	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(botToken))
	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataString))
	return h.Sum(nil)
}

// пользователь из поля user проверенной init_data
func InitDataPlayer(values url.Values) (domain.Player, error) {
	var u struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Username  string `json:"username"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &u); err != nil || u.ID == 0 {
		return domain.Player{}, ErrInitDataUser
	}
	return domain.Player{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}, nil
}
