package renderer

import (
	"testing"

	"render-service/internal/config"
)

func hasEnv(env []string, kv string) bool {
	for _, e := range env {
		if e == kv {
			return true
		}
	}
	return false
}

func TestBuildLaunchConfigTimezone(t *testing.T) {
	cfg := &config.Config{Timezone: "UTC"}

	lc := BuildLaunchConfig(cfg, &Request{})
	if !hasEnv(lc.Env, "TZ=UTC") {
		t.Fatalf("expected configured default timezone in env")
	}

	lc = BuildLaunchConfig(cfg, &Request{Timezone: "Europe/Oslo"})
	if !hasEnv(lc.Env, "TZ=Europe/Oslo") {
		t.Fatalf("expected request timezone to win")
	}
	if hasEnv(lc.Env, "TZ=UTC") {
		t.Fatalf("default timezone should have been replaced")
	}
}

func TestBuildLaunchConfigFixedFlags(t *testing.T) {
	cfg := &config.Config{IgnoreHTTPSErrors: true, ChromeBin: "/usr/bin/chromium"}

	lc := BuildLaunchConfig(cfg, &Request{})
	if !lc.NoSandbox {
		t.Fatalf("sandbox-disable flag must always be set")
	}
	if !lc.IgnoreHTTPSErrors {
		t.Fatalf("expected TLS-error tolerance from config")
	}
	if lc.ExecPath != "/usr/bin/chromium" {
		t.Fatalf("exec path = %q", lc.ExecPath)
	}
	if !lc.Headless {
		t.Fatalf("headless should default to true")
	}
}

func TestBuildLaunchConfigCallerOverridesWin(t *testing.T) {
	headless := false
	req := &Request{Overrides: Overrides{LaunchOptions: &LaunchOverrides{
		Args:     []string{"--disable-extensions"},
		Headless: &headless,
	}}}

	lc := BuildLaunchConfig(&config.Config{}, req)
	if lc.Headless {
		t.Fatalf("caller headless override should win")
	}
	if len(lc.ExtraArgs) != 1 || lc.ExtraArgs[0] != "--disable-extensions" {
		t.Fatalf("extra args = %v", lc.ExtraArgs)
	}
	// The fixed fields survive a shallow merge.
	if !lc.NoSandbox {
		t.Fatalf("sandbox-disable flag lost in merge")
	}
}
