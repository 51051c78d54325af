package config

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

const (
	settingsFileName = "settings.json"
	settingsCacheTTL = 5 * time.Minute
)

// Settings is the persisted settings.json shape.
type Settings struct {
	AI AISettings `json:"ai"`
}

// AISettings configures the chat backend and the per-application blacklist.
type AISettings struct {
	Enabled       bool     `json:"enabled"`
	APIKey        string   `json:"api_key"`
	BaseURL       string   `json:"base_url"`
	Model         string   `json:"model"`
	BlacklistApps []string `json:"blacklist_apps"`
}

// SettingsStore loads settings.json through the layered path resolution and
// caches the result for five minutes. Callers get a value copy each time.
type SettingsStore struct {
	paths Paths

	mu       sync.RWMutex
	cached   *Settings
	loadedAt time.Time
}

func NewSettingsStore(paths Paths) *SettingsStore {
	return &SettingsStore{paths: paths}
}

// Load returns the current settings, re-reading the file when the cache has
// expired. A missing or unparsable file yields compiled-in disabled defaults.
func (s *SettingsStore) Load() Settings {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.loadedAt) < settingsCacheTTL {
		defer s.mu.RUnlock()
		return *s.cached
	}
	s.mu.RUnlock()

	loaded := s.read()

	s.mu.Lock()
	s.cached = &loaded
	s.loadedAt = time.Now()
	s.mu.Unlock()

	return loaded
}

// Invalidate drops the cache so the next Load re-reads the file.
func (s *SettingsStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Path returns the location settings should be written to.
func (s *SettingsStore) Path() string {
	return s.paths.WritablePath(settingsFileName)
}

// Save persists the given settings as pretty JSON and refreshes the cache.
func (s *SettingsStore) Save(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = &settings
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *SettingsStore) read() Settings {
	path, found := s.paths.Resolve(settingsFileName)
	if !found {
		log.Printf("Config: %s not found in any location, AI features disabled", settingsFileName)
		return Settings{}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Config: failed to read %s: %v", path, err)
		return Settings{}
	}

	var settings Settings
	if err := json.Unmarshal(content, &settings); err != nil {
		log.Printf("Config: failed to parse %s: %v", path, err)
		return Settings{}
	}

	log.Printf("Config: loaded settings from %s", path)
	return settings
}
