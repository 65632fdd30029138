package cache

import (
	"testing"
	"time"

	"github.com/nikdesigns/esports-track/internal/platform/logging"
)

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"matches:12:1:all":     "matches_12_1_all",
		"team/42?limit=5":      "team_42_limit_5",
		"plain-key_01":         "plain-key_01",
		"filter[status]=panda": "filter_status__panda",
	}

	for in, want := range cases {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileMirror_WriteReadRemove(t *testing.T) {
	mirror, err := NewFileMirror(t.TempDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("new file mirror: %v", err)
	}
	defer mirror.Close()

	mirror.Write("matches:12:1:all", []byte(`{"ts":1,"ttl":20,"value":[]}`))

	// Writes are async; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	var raw []byte
	var ok bool
	for time.Now().Before(deadline) {
		if raw, ok = mirror.Read("matches:12:1:all"); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !ok {
		t.Fatal("expected mirror file to appear")
	}
	if string(raw) != `{"ts":1,"ttl":20,"value":[]}` {
		t.Fatalf("unexpected mirror contents: %s", raw)
	}

	mirror.Remove("matches:12:1:all")
	if _, ok := mirror.Read("matches:12:1:all"); ok {
		t.Fatal("expected record to be removed")
	}
}
