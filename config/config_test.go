package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOTKEY_KEY", "")
	t.Setenv("HOTKEY_MODE", "")
	t.Setenv("HOTKEY_INTERVAL_MS", "")
	t.Setenv("ENABLE_FILE_LOGGING", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TriggerKey != "ctrl" {
		t.Errorf("TriggerKey = %q, expected ctrl", cfg.TriggerKey)
	}
	if cfg.TriggerMode != "double_press" {
		t.Errorf("TriggerMode = %q, expected double_press", cfg.TriggerMode)
	}
	if cfg.IntervalMS != 400 {
		t.Errorf("IntervalMS = %d, expected 400", cfg.IntervalMS)
	}
	if cfg.EnableFileLogging {
		t.Error("EnableFileLogging should default to false")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HOTKEY_KEY", "SHIFT")
	t.Setenv("HOTKEY_MODE", "Select_Move")
	t.Setenv("HOTKEY_INTERVAL_MS", "250")
	t.Setenv("ENABLE_FILE_LOGGING", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TriggerKey != "shift" {
		t.Errorf("TriggerKey = %q, expected shift", cfg.TriggerKey)
	}
	if cfg.TriggerMode != "select_move" {
		t.Errorf("TriggerMode = %q, expected select_move", cfg.TriggerMode)
	}
	if cfg.IntervalMS != 250 {
		t.Errorf("IntervalMS = %d, expected 250", cfg.IntervalMS)
	}
	if !cfg.EnableFileLogging {
		t.Error("EnableFileLogging should be true")
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	for _, bad := range []string{"abc", "-5", "0"} {
		t.Run(bad, func(t *testing.T) {
			t.Setenv("HOTKEY_INTERVAL_MS", bad)
			cfg, err := Load()
			if err != nil {
				t.Fatal(err)
			}
			if cfg.IntervalMS != 400 {
				t.Errorf("IntervalMS = %d for %q, expected default 400", cfg.IntervalMS, bad)
			}
		})
	}
}

func TestResolvePrefersConfigDir(t *testing.T) {
	p := Paths{
		ConfigDir:   t.TempDir(),
		ResourceDir: t.TempDir(),
		WorkDir:     t.TempDir(),
	}
	userPath := filepath.Join(p.ConfigDir, "x.json")
	if err := os.WriteFile(userPath, []byte("user"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(p.ResourceDir, "x.json"), []byte("resource"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, found := p.Resolve("x.json")
	if !found || got != userPath {
		t.Errorf("Resolve = (%q, %v), expected (%q, true)", got, found, userPath)
	}
}

func TestResolveCopiesBundledFileOnFirstUse(t *testing.T) {
	p := Paths{
		ConfigDir:   t.TempDir(),
		ResourceDir: t.TempDir(),
		WorkDir:     t.TempDir(),
	}
	if err := os.WriteFile(filepath.Join(p.ResourceDir, "x.json"), []byte("bundled"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, found := p.Resolve("x.json")
	userPath := filepath.Join(p.ConfigDir, "x.json")
	if !found || got != userPath {
		t.Fatalf("Resolve = (%q, %v), expected copy at %q", got, found, userPath)
	}

	content, err := os.ReadFile(userPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "bundled" {
		t.Errorf("copied content = %q, expected bundled", content)
	}
}

func TestResolveFallsBackToWorkDir(t *testing.T) {
	p := Paths{
		ConfigDir:   t.TempDir(),
		ResourceDir: t.TempDir(),
		WorkDir:     t.TempDir(),
	}
	localPath := filepath.Join(p.WorkDir, "x.json")
	if err := os.WriteFile(localPath, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, found := p.Resolve("x.json")
	if !found || got != localPath {
		t.Errorf("Resolve = (%q, %v), expected (%q, true)", got, found, localPath)
	}
}

func TestResolveMissingReportsWritablePath(t *testing.T) {
	p := Paths{
		ConfigDir: t.TempDir(),
		WorkDir:   t.TempDir(),
	}
	got, found := p.Resolve("missing.json")
	if found {
		t.Fatal("missing file reported as found")
	}
	if got != filepath.Join(p.ConfigDir, "missing.json") {
		t.Errorf("Resolve = %q, expected the writable config-dir path", got)
	}
}

func TestSettingsStoreDefaultsWhenMissing(t *testing.T) {
	store := NewSettingsStore(Paths{ConfigDir: t.TempDir(), WorkDir: t.TempDir()})
	s := store.Load()
	if s.AI.Enabled {
		t.Error("missing settings.json should disable AI")
	}
	if s.AI.APIKey != "" || s.AI.Model != "" {
		t.Error("missing settings.json should yield zero-value settings")
	}
}

func TestSettingsStoreLoadsAndCaches(t *testing.T) {
	paths := Paths{ConfigDir: t.TempDir(), WorkDir: t.TempDir()}
	store := NewSettingsStore(paths)

	write := func(s Settings) {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(paths.ConfigDir, settingsFileName), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write(Settings{AI: AISettings{Enabled: true, APIKey: "sk-test", Model: "gpt-4o-mini"}})
	s := store.Load()
	if !s.AI.Enabled || s.AI.Model != "gpt-4o-mini" {
		t.Fatalf("loaded settings = %+v", s)
	}

	// Cached: a rewrite is invisible until Invalidate.
	write(Settings{AI: AISettings{Enabled: false}})
	if got := store.Load(); !got.AI.Enabled {
		t.Fatal("cache should mask the rewrite")
	}

	store.Invalidate()
	if got := store.Load(); got.AI.Enabled {
		t.Fatal("Invalidate should force a re-read")
	}
}

func TestSettingsStoreSaveRoundTrip(t *testing.T) {
	store := NewSettingsStore(Paths{ConfigDir: t.TempDir(), WorkDir: t.TempDir()})

	in := Settings{AI: AISettings{
		Enabled:       true,
		APIKey:        "sk-roundtrip",
		BaseURL:       "https://api.example.com/v1",
		Model:         "test-model",
		BlacklistApps: []string{"keepass.exe"},
	}}
	if err := store.Save(in); err != nil {
		t.Fatal(err)
	}

	store.Invalidate()
	out := store.Load()
	if out.AI.APIKey != "sk-roundtrip" || out.AI.BaseURL != "https://api.example.com/v1" {
		t.Fatalf("round-trip mismatch: %+v", out)
	}
	if len(out.AI.BlacklistApps) != 1 || out.AI.BlacklistApps[0] != "keepass.exe" {
		t.Fatalf("blacklist mismatch: %v", out.AI.BlacklistApps)
	}
}
