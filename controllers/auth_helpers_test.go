package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// signTelegram builds the hash the login widget would send: HMAC-SHA256 over
// the sorted k=v data-check string, keyed with SHA256 of the bot token.
func signTelegram(botToken string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields))
	for k, v := range fields {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	key := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, key[:])
	h.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyTelegramSignature(t *testing.T) {
	const token = "12345:test-bot-token"
	req := telegramLoginRequest{
		ID:        "987654321",
		Username:  "sasha",
		FirstName: "Саша",
		AuthDate:  1741600000,
	}
	req.Hash = signTelegram(token, map[string]string{
		"id":         req.ID,
		"username":   req.Username,
		"first_name": req.FirstName,
		"auth_date":  fmt.Sprintf("%d", req.AuthDate),
	})

	assert.True(t, verifyTelegramSignature(token, req))

	tampered := req
	tampered.ID = "111"
	assert.False(t, verifyTelegramSignature(token, tampered), "changed field invalidates the hash")

	assert.False(t, verifyTelegramSignature("другой-токен", req), "wrong bot token")
	assert.False(t, verifyTelegramSignature("", req), "missing bot token never verifies")

	badHex := req
	badHex.Hash = "not-hex"
	assert.False(t, verifyTelegramSignature(token, badHex))
}

func TestVerifyTelegramSignature_OptionalFieldsOmitted(t *testing.T) {
	const token = "12345:test-bot-token"
	req := telegramLoginRequest{ID: "42", AuthDate: 1741600000}
	req.Hash = signTelegram(token, map[string]string{
		"id":        req.ID,
		"auth_date": fmt.Sprintf("%d", req.AuthDate),
	})

	assert.True(t, verifyTelegramSignature(token, req),
		"empty optional fields stay out of the data-check string")
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("lena_99"))
	assert.True(t, validUsername("Саша-без-сахара"))
	assert.True(t, validUsername("mixЛат1"))
	assert.False(t, validUsername("has space"))
	assert.False(t, validUsername("email@host"))
	assert.False(t, validUsername("emoji🍬"))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, validPassword("secret-123"))
	assert.True(t, validPassword("a.b_C9"))
	assert.False(t, validPassword("пароль"), "passwords stay ASCII")
	assert.False(t, validPassword("with space"))
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "sasha", sanitizeUsername("  Sasha  "))
	assert.Equal(t, "a_b", sanitizeUsername("a.b"))
	assert.Equal(t, "ab9", sanitizeUsername("_ab9_"))
	assert.Equal(t, "", sanitizeUsername("Саша"), "non-latin input collapses to empty")
	assert.Equal(t, "", sanitizeUsername("___"))
}

func TestParsePagination(t *testing.T) {
	page, size := parsePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = parsePagination("3", "25")
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)

	page, size = parsePagination("-1", "500")
	assert.Equal(t, 1, page, "negative page falls back")
	assert.Equal(t, 10, size, "oversized page size falls back")

	_, size = parsePagination("1", "100")
	assert.Equal(t, 100, size, "cap is inclusive")
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "b", fallback("", " ", "b", "c"))
	assert.Equal(t, "", fallback("", "  "))
}
