package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.QueueDir != "./data" {
		t.Fatalf("expected default queue dir ./data, got %q", cfg.QueueDir)
	}
	if cfg.DefaultPriority != 100 {
		t.Fatalf("expected default priority 100, got %d", cfg.DefaultPriority)
	}
	if cfg.WorkerPollDelay != 5*time.Second {
		t.Fatalf("expected default poll delay 5s, got %v", cfg.WorkerPollDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUEUE_DIR", "/var/lib/workqueue")
	t.Setenv("DEFAULT_PRIORITY", "250")
	t.Setenv("WORKER_POLL_DELAY", "500ms")

	cfg := Load()

	if cfg.QueueDir != "/var/lib/workqueue" {
		t.Fatalf("QUEUE_DIR not picked up, got %q", cfg.QueueDir)
	}
	if cfg.DefaultPriority != 250 {
		t.Fatalf("DEFAULT_PRIORITY not picked up, got %d", cfg.DefaultPriority)
	}
	if cfg.WorkerPollDelay != 500*time.Millisecond {
		t.Fatalf("WORKER_POLL_DELAY not picked up, got %v", cfg.WorkerPollDelay)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.DefaultPriority = 100000000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range DEFAULT_PRIORITY")
	}

	cfg = Load()
	cfg.WorkerPollDelay = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero WORKER_POLL_DELAY")
	}
}
