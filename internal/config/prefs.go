package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultLanguage is used when no preference has been saved.
const DefaultLanguage = "en"

// SupportedLanguages lists the accepted language codes.
var SupportedLanguages = []string{"en", "zh"}

// ErrUnsupportedLanguage is returned for codes outside SupportedLanguages.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// DefaultPreferencesPath returns the per-user preference file location,
// falling back to the working directory when no config dir is available.
func DefaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "image-crop-preferences.json"
	}
	return filepath.Join(dir, "image-crop-mcp", "preferences.json")
}

// Preferences is the persisted language choice.
//
// The file holds a single JSON object, {"language": "en"}. Preferences is
// safe for concurrent use.
type Preferences struct {
	mu       sync.Mutex
	path     string
	language string
}

// LoadPreferences reads the preference file at path. A missing file yields
// the default language. An empty path keeps the preference in memory only.
// An unreadable or unsupported value is reported and replaced by the default.
func LoadPreferences(path string) (*Preferences, error) {
	p := &Preferences{path: path, language: DefaultLanguage}
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read preferences: %w", err)
	}

	var stored struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return p, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	if !IsSupportedLanguage(stored.Language) {
		return p, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, stored.Language)
	}
	p.language = stored.Language
	return p, nil
}

// IsSupportedLanguage reports whether code is in SupportedLanguages.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// Get returns the current language.
func (p *Preferences) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.language
}

// Set validates code, stores it, and writes the file.
func (p *Preferences) Set(code string) error {
	if !IsSupportedLanguage(code) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.path == "" {
		p.language = code
		return nil
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create preferences dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(struct {
		Language string `json:"language"`
	}{code}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	p.language = code
	return nil
}

// Path returns the preference file location.
func (p *Preferences) Path() string {
	return p.path
}
