package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the user-tunable state that survives across runs. Only the
// three index fields are persisted; everything else is resolved at mode entry
// and owned by the running session.
type Settings struct {
	ScanStepIndex   int `json:"scanStepIndex"`
	StepsCountIndex int `json:"stepsCountIndex"`
	ListenBWIndex   int `json:"listenBandwidthIndex"`

	// Session-only fields.
	TriggerLevel int `json:"-"` // RSSI units; 0 means auto (max + margin)
	DBMin        int `json:"-"`
	DBMax        int `json:"-"`
}

// Defaults returns the settings used when no saved file exists.
func Defaults() Settings {
	return Settings{
		ScanStepIndex:   scanStepIndexDefault,
		StepsCountIndex: stepsCountIndexDefault,
		ListenBWIndex:   0,
		DBMin:           DefaultDBMin,
		DBMax:           DefaultDBMax,
	}
}

const (
	scanStepIndexDefault   = 12 // 25 kHz
	stepsCountIndexDefault = 1  // 64 steps

	ScanStepIndexMax   = 14
	StepsCountIndexMax = 3
	ListenBWIndexMax   = 2
)

// ListenBWOptions are the listen-bandwidth labels, widest first.
var ListenBWOptions = []string{"25k", "12.5k", "6.25k"}

// ListenBWHz maps the bandwidth index to Hz.
var ListenBWHz = []uint32{25_000, 12_500, 6_250}

// Normalize clamps out-of-range indexes back to their defaults, mirroring how
// the persisted byte fields are validated on the handheld. It never fails;
// a corrupt file degrades to defaults.
func (s *Settings) Normalize() {
	if s.ScanStepIndex < 0 || s.ScanStepIndex > ScanStepIndexMax {
		s.ScanStepIndex = scanStepIndexDefault
	}
	if s.StepsCountIndex < 0 || s.StepsCountIndex > StepsCountIndexMax {
		s.StepsCountIndex = stepsCountIndexDefault
	}
	if s.ListenBWIndex < 0 || s.ListenBWIndex > ListenBWIndexMax {
		s.ListenBWIndex = 0
	}
	if s.DBMax <= s.DBMin {
		s.DBMin = DefaultDBMin
		s.DBMax = DefaultDBMax
	}
}

// Load reads persisted settings from path. A missing file is not an error:
// defaults are returned.
func Load(path string) (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Save writes persisted settings to path, creating parent directories.
func (s Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rfscope.json"
	}
	return filepath.Join(home, ".config", "rfscope", "settings.json")
}
