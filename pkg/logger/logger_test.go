package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"email", "a@b.c", "password", "hunter2", "access_token", "abc", "dangling"})

	if len(out) != 7 {
		t.Fatalf("len: want=7 got=%d", len(out))
	}
	if out[1] != "a@b.c" {
		t.Fatalf("email: want=a@b.c got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("access_token: want=[REDACTED] got=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key: want=dangling got=%v", out[6])
	}
}

func TestDefaultIsUsableBeforeSet(t *testing.T) {
	Default().Info("no-op logger", "key", "value")

	l := Nop()
	SetDefault(l)
	if Default() != l {
		t.Fatalf("default logger was not replaced")
	}
	SetDefault(nil)
	if Default() != l {
		t.Fatalf("nil must not replace the default logger")
	}
}
