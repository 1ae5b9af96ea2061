package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer logger.SetLevel(logrus.InfoLevel)

	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug): %v", err)
	}
	if got := GetLogger().GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", got)
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if got := GetLogger().GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("level changed on error: %v", got)
	}
}
