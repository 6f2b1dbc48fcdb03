package dto

import (
	"testing"
	"time"

	"kekspay-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := LoginRequest{
		Username: "  alice  ",
		Password: "  pass1234  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	title := "KEKS Pay <script>alert('x')</script>"
	req := SettingsUpdateRequest{Title: &title}
	SanitizeStruct(&req)

	assert.Contains(t, *req.Title, "&lt;script&gt;")
	assert.NotContains(t, *req.Title, "<script>")
}

func TestSanitizeStruct_LeavesNestedCredentials(t *testing.T) {
	key := " k&y<with>symbols "
	req := SettingsUpdateRequest{Live: CredentialsRequest{SecretKey: &key}}
	SanitizeStruct(&req)

	assert.Equal(t, " k&y<with>symbols ", *req.Live.SecretKey)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := SettingsUpdateRequest{}
	SanitizeStruct(&req)
	assert.Nil(t, req.Title)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

func TestSanitizeParams(t *testing.T) {
	in := map[string]string{
		" bill_id ": " T1-42 ",
		"message":   "<b>Odbijeno</b>",
	}
	out := SanitizeParams(in)

	assert.Equal(t, "T1-42", out["bill_id"])
	assert.Equal(t, "&lt;b&gt;Odbijeno&lt;/b&gt;", out["message"])
	assert.Equal(t, " T1-42 ", in[" bill_id "], "input must not be modified")
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"wc_order_abc",
		"C1",
		"a.b.c",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestNewSettingsResponse_MasksSecrets(t *testing.T) {
	s := &domain.Settings{
		Enabled:   true,
		TestMode:  true,
		Live:      domain.Credentials{CID: "C1", TID: "T1"},
		Test:      domain.Credentials{CID: "TC1", TID: "TT1", SecretKey: "ponmlkjihgfedcba"},
		AuthToken: "secret-token",
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	resp := NewSettingsResponse(s)

	assert.False(t, resp.Live.SecretKeySet)
	assert.True(t, resp.Test.SecretKeySet)
	assert.True(t, resp.RequiredKeysSet)
	assert.Equal(t, "processing", resp.PaidOrderStatus)
	assert.Equal(t, "2026-01-02T03:04:05Z", resp.UpdatedAt)
}
