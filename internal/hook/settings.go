package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings configures the hook binary. Everything has a default; a
// missing settings file is not an error.
type Settings struct {
	CatalogFile string `yaml:"catalogFile"`
	ContentDir  string `yaml:"contentDir"`
	LedgerDir   string `yaml:"ledgerDir"`

	Thresholds struct {
		High float64 `yaml:"high"`
		Low  float64 `yaml:"low"`
	} `yaml:"thresholds"`

	Tiers struct {
		MaxAdmit    int `yaml:"maxAdmit"`
		MaxConsider int `yaml:"maxConsider"`
	} `yaml:"tiers"`

	Capacity int `yaml:"capacity"`

	ScoreCacheTTL time.Duration `yaml:"scoreCacheTTL"`

	LogLevel string `yaml:"logLevel"`
}

// ConfigPathEnv overrides the settings file location.
const ConfigPathEnv = "SKILLROUTER_CONFIG"

// DefaultSettings roots everything under dir (conventionally
// ~/.skillrouter).
func DefaultSettings(dir string) Settings {
	var s Settings
	s.CatalogFile = filepath.Join(dir, "skills.yaml")
	s.ContentDir = filepath.Join(dir, "skills")
	s.LedgerDir = filepath.Join(dir, "ledger")
	s.Thresholds.High = 0.65
	s.Thresholds.Low = 0.50
	s.Tiers.MaxAdmit = 2
	s.Tiers.MaxConsider = 2
	s.Capacity = 2
	s.ScoreCacheTTL = 5 * time.Minute
	s.LogLevel = "info"
	return s
}

// LoadSettings reads the settings file at path, overlaying defaults
// rooted next to it. A missing file yields pure defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings(filepath.Dir(path))

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// SettingsPath resolves the settings file location: env override first,
// then ~/.skillrouter/config.yaml.
func SettingsPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".skillrouter", "config.yaml")
	}
	return filepath.Join(home, ".skillrouter", "config.yaml")
}
