package log

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetLevelRoundTrips(t *testing.T) {
	defer SetLevel(InfoLevel)

	SetLevel(DebugLevel)
	if got := CurrentLevel(); got != DebugLevel {
		t.Fatalf("CurrentLevel() = %q, want %q", got, DebugLevel)
	}

	SetLevel(WarnLevel)
	if got := CurrentLevel(); got != WarnLevel {
		t.Fatalf("CurrentLevel() = %q, want %q", got, WarnLevel)
	}
}

func TestSetLevelUnknownDefaultsToInfo(t *testing.T) {
	defer SetLevel(InfoLevel)

	SetLevel(Level("nonsense"))
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Fatalf("GlobalLevel() = %v, want InfoLevel", got)
	}
}

func TestToggleLevelRevertsAfterDuration(t *testing.T) {
	defer SetLevel(InfoLevel)
	SetLevel(InfoLevel)

	if err := ToggleLevel(DebugLevel, 10*time.Millisecond); err != nil {
		t.Fatalf("ToggleLevel returned error: %v", err)
	}
	if got := CurrentLevel(); got != DebugLevel {
		t.Fatalf("CurrentLevel() right after toggle = %q, want %q", got, DebugLevel)
	}

	time.Sleep(50 * time.Millisecond)
	if got := CurrentLevel(); got != InfoLevel {
		t.Fatalf("CurrentLevel() after revert = %q, want %q", got, InfoLevel)
	}
}

func TestToggleLevelRejectsUnknownLevel(t *testing.T) {
	defer SetLevel(InfoLevel)

	if err := ToggleLevel(Level("bogus"), time.Second); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestToggleLevelWithoutDurationLeavesLevelSet(t *testing.T) {
	defer SetLevel(InfoLevel)

	if err := ToggleLevel(ErrorLevel, 0); err != nil {
		t.Fatalf("ToggleLevel returned error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if got := CurrentLevel(); got != ErrorLevel {
		t.Fatalf("CurrentLevel() = %q, want %q (no revert expected)", got, ErrorLevel)
	}
}
