package di

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-deeplinks/pkg/config"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
)

func TestNewUsesDefaults(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	if c.Config.Links.Domain != "https://tonhub.com" {
		t.Fatalf("expected default domain, got %s", c.Config.Links.Domain)
	}
	if c.Router == nil || c.Commands == nil || c.Bridge == nil {
		t.Fatalf("expected router, commands and bridge to be wired")
	}
	replay, _, err := c.Options.ReplayLastResponse()
	if err != nil || replay {
		t.Fatalf("expected no replay on ios, got %v %v", replay, err)
	}
}

func TestNewAndroidReplaysAndAuditToggle(t *testing.T) {
	cfg := config.Defaults()
	cfg.Platform = "android"
	cfg.Links.Audit = false
	c, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	if replay, _, _ := c.Options.ReplayLastResponse(); !replay {
		t.Fatalf("expected android to replay the last response")
	}
	if _, ok := c.Storage.Links.(*store.NopLinkRecords); !ok {
		t.Fatalf("expected audit disabled to use the nop link store, got %T", c.Storage.Links)
	}
}

func TestNewLogsReplayResolution(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.Platform = "android"
	if _, err := New(Options{Config: cfg, Logger: logger.NewWriter(&buf, logger.LevelDebug)}); err != nil {
		t.Fatalf("container: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "push replay resolved") || !strings.Contains(out, "path=push.replay_last_response") {
		t.Fatalf("expected replay trace in logs, got %q", out)
	}
	if !strings.Contains(out, "replay=true") {
		t.Fatalf("expected android replay in logs, got %q", out)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Links.Domain = "tonhub.com"
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Fatalf("expected invalid domain error")
	}
}
