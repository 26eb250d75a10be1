package sentry

import "testing"

func TestInitialize_EmptyDSN(t *testing.T) {
	if err := Initialize(Config{DSN: ""}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}

	if IsEnabled() {
		t.Error("Expected IsEnabled() to return false when DSN is empty")
	}
}

func TestCaptureException_DisabledIsNoOp(t *testing.T) {
	// Must not panic when Sentry was never initialized.
	CaptureException(nil)
	Flush(0)
}
