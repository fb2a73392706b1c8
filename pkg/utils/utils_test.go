package utils

import "testing"

func TestCoalesceString(t *testing.T) {
	if got := CoalesceString("", "a", "b"); got != "a" {
		t.Errorf("CoalesceString: expected a, got %q", got)
	}
	if got := CoalesceString("", ""); got != "" {
		t.Errorf("CoalesceString all empty: expected empty, got %q", got)
	}
}

func TestDefaultInt(t *testing.T) {
	if got := DefaultInt(0, 7); got != 7 {
		t.Errorf("DefaultInt(0, 7) = %d", got)
	}
	if got := DefaultInt(3, 7); got != 3 {
		t.Errorf("DefaultInt(3, 7) = %d", got)
	}
}

func TestDefaultFloat(t *testing.T) {
	if got := DefaultFloat(0, 2.5); got != 2.5 {
		t.Errorf("DefaultFloat(0, 2.5) = %v", got)
	}
	if got := DefaultFloat(1.5, 2.5); got != 1.5 {
		t.Errorf("DefaultFloat(1.5, 2.5) = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate no-op: %q", got)
	}
	if got := Truncate("hello world", 8); got != "hello..." {
		t.Errorf("Truncate: %q", got)
	}
	if got := Truncate("hello", 2); got != "he" {
		t.Errorf("Truncate tiny: %q", got)
	}
}
