package config_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sitegear/go-sitegear/internal/config"
	"github.com/sitegear/go-sitegear/pkg/access"
)

// Tests here mutate the environment and cannot run in parallel.

func TestLoad_Defaults(t *testing.T) {
	got, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Config{
		LogLevel:   "info",
		LogFormat:  "text",
		AccessMode: "deny",
		RedisURL:   "redis://localhost:6379/0",
		ACLPrefix:  "sitegear:acl:",
		ACLTimeout: 2 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SITEGEAR_LOG_LEVEL", "DEBUG")
	t.Setenv("SITEGEAR_LOG_FORMAT", "json")
	t.Setenv("SITEGEAR_ACCESS", "Allow")
	t.Setenv("SITEGEAR_ACL_TIMEOUT", "150ms")
	t.Setenv("SITEGEAR_THEME", "acme")

	got, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.LogLevel != "debug" || got.LogFormat != "json" || got.AccessMode != config.AccessAllow {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.ACLTimeout != 150*time.Millisecond || got.ThemeName != "acme" {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SITEGEAR_LOG_LEVEL", "chatty")
	t.Setenv("SITEGEAR_ACCESS", "maybe")

	_, err := config.Load()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, fragment := range []string{"chatty", "maybe"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q does not mention %q", err, fragment)
		}
	}
}

func TestConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.Config{LogLevel: "warn", LogFormat: config.FormatJSON}.Logger(&buf)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected log output: %s", out)
	}

	if _, err := (config.Config{LogLevel: "loud"}).Logger(&buf); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfig_Controller(t *testing.T) {
	ctx := context.Background()

	allow, closeFn, err := config.Config{AccessMode: config.AccessAllow}.Controller(ctx, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	defer closeFn()
	if _, ok := allow.(access.AllowAll); !ok {
		t.Fatalf("allow mode built %T", allow)
	}

	deny, _, err := config.Config{AccessMode: config.AccessDeny}.Controller(ctx, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	if deny.CheckPrivilege(ctx, "alice", "forms.edit") {
		t.Fatalf("deny mode granted a privilege")
	}

	unreachable := config.Config{
		AccessMode: config.AccessRedis,
		RedisURL:   "redis://127.0.0.1:1/0",
		ACLTimeout: 50 * time.Millisecond,
	}
	if _, _, err := unreachable.Controller(ctx, nil); !errors.Is(err, access.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestConfig_ThemeSelector(t *testing.T) {
	none, err := config.Config{}.ThemeSelector()
	if err != nil || none != nil {
		t.Fatalf("expected no selector, got %v, %v", none, err)
	}

	path := filepath.Join(t.TempDir(), "acme.yaml")
	manifest := "name: acme\ntokens:\n  brand: \"#123456\"\nvariants:\n  dark:\n    tokens:\n      brand: \"#654321\"\n"
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	selector, err := config.Config{ThemeFile: path}.ThemeSelector()
	if err != nil {
		t.Fatalf("theme selector: %v", err)
	}
	sel, err := selector.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Theme != "acme" || sel.Manifest.Variants["dark"].Tokens["brand"] != "#654321" {
		t.Fatalf("unexpected selection: %+v", sel)
	}

	nameless := filepath.Join(t.TempDir(), "nameless.yaml")
	if err := os.WriteFile(nameless, []byte("tokens: {a: b}\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := (config.Config{ThemeFile: nameless}).ThemeSelector(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
