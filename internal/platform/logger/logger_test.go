package logger

import "testing"

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	in := []interface{}{
		"api_key", "AIza-secret",
		"key", "plain",
		"session_id", "0b0c-session",
		"jurisdiction", "la-county",
	}
	out := sanitizeKVs(in)
	if len(out) != len(in) {
		t.Fatalf("unexpected length: got=%d want=%d", len(out), len(in))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("credentials leaked: %v", out)
	}
	if s, _ := out[5].(string); len(s) < 5 || s[:5] != "hash:" {
		t.Fatalf("session_id not hashed: %v", out[5])
	}
	if out[7] != "la-county" {
		t.Fatalf("plain value altered: %v", out[7])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"provider", "google", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}
