package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("VG_TEST_INT", "abc")
	if got := Int("VG_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: got=%d want=7", got)
	}
	t.Setenv("VG_TEST_INT", " 12 ")
	if got := Int("VG_TEST_INT", 7); got != 12 {
		t.Fatalf("Int: got=%d want=12", got)
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds("VG_TEST_UNSET", 3*time.Second); got != 3*time.Second {
		t.Fatalf("Seconds default: got=%s", got)
	}
	t.Setenv("VG_TEST_SECS", "0")
	if got := Seconds("VG_TEST_SECS", time.Minute); got != 0 {
		t.Fatalf("Seconds zero: got=%s", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("VG_TEST_BOOL", "off")
	if Bool("VG_TEST_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	if !Bool("VG_TEST_BOOL_UNSET", true) {
		t.Fatalf("Bool: expected default true")
	}
}
