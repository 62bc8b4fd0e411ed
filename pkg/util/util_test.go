package util

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatalf("hash must not equal the password")
	}
	if !CheckPassword("s3cret!", hash) {
		t.Fatalf("password should match")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("wrong password must not match")
	}
}

func TestSessionTitle(t *testing.T) {
	if SessionTitle("   ") != nil {
		t.Fatalf("blank message must produce nil title")
	}

	long := strings.Repeat("가", 45)
	title := SessionTitle(long)
	if title == nil || len([]rune(*title)) != TitleMaxRunes {
		t.Fatalf("expected %d runes, got %v", TitleMaxRunes, title)
	}

	short := SessionTitle(" 오늘 기분이 좋아 ")
	if short == nil || *short != "오늘 기분이 좋아" {
		t.Fatalf("unexpected title %v", short)
	}
}

func TestIDs(t *testing.T) {
	if a, b := NewSessionID(), NewSessionID(); a == b || len(a) != 36 {
		t.Fatalf("unexpected session ids %q %q", a, b)
	}
	if id := NewRequestID(); len(id) != 32 || strings.Contains(id, "-") {
		t.Fatalf("unexpected request id %q", id)
	}
}
