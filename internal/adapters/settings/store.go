package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
	"github.com/spf13/viper"
)

const (
	configDirName  = ".packybar"
	configFileName = "config.json"

	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.json.tmp"
)

// Store persists the flat recognized-key settings as a single JSON object.
// Unknown keys are dropped on save and a corrupt file is silently replaced
// by defaults, so the file always round-trips through defaults plus the
// recognized subset.
type Store struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SettingsStore = (*Store)(nil)

// NewStore resolves the fixed per-user config path under the home directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return NewStoreAt(filepath.Join(homeDir, configDirName, configFileName)), nil
}

// NewStoreAt builds a store over an explicit path.
func NewStoreAt(path string) *Store {
	path = filepath.Clean(path)
	return &Store{path: path, mu: lockForPath(path)}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing or unparseable file falls back to defaults. Any other read
		// failure surfaces, so a following Save cannot clobber a file that
		// was merely unreadable at the time.
		var parseErr viper.ConfigParseError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &parseErr) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, fmt.Errorf("read config file: %w", err)
	}

	return fromViper(v).Normalize(), nil
}

func (s *Store) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(toSchema(settings.Normalize()), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func applyDefaults(v *viper.Viper) {
	defaults := domain.DefaultSettings()

	v.SetDefault("account", defaults.Account)
	v.SetDefault("token", string(defaults.Token))
	v.SetDefault("hidden", defaults.Hidden)
	v.SetDefault("poll_interval_seconds", defaults.PollIntervalSeconds)
	v.SetDefault("title_mode", defaults.TitleMode)
	v.SetDefault("title_template", defaults.TitleTemplate)
	v.SetDefault("title_requests", defaults.TitleRequests)
	v.SetDefault("ring_enabled", defaults.RingEnabled)
	v.SetDefault("ring_colored", defaults.RingColored)
	v.SetDefault("ring_color_mode", defaults.RingColorMode)
	v.SetDefault("ring_reverse", defaults.RingReverse)
	v.SetDefault("ring_label", defaults.RingLabel)
	v.SetDefault("ring_label_tag", defaults.RingLabelTag)
	v.SetDefault("language", defaults.Language)
	v.SetDefault("update_signer", defaults.UpdateSigner)
}

func fromViper(v *viper.Viper) domain.Settings {
	return domain.Settings{
		Account:             v.GetString("account"),
		Token:               domain.Credential(v.GetString("token")),
		Hidden:              v.GetBool("hidden"),
		PollIntervalSeconds: v.GetInt("poll_interval_seconds"),
		TitleMode:           v.GetString("title_mode"),
		TitleTemplate:       v.GetString("title_template"),
		TitleRequests:       v.GetBool("title_requests"),
		RingEnabled:         v.GetBool("ring_enabled"),
		RingColored:         v.GetBool("ring_colored"),
		RingColorMode:       v.GetString("ring_color_mode"),
		RingReverse:         v.GetBool("ring_reverse"),
		RingLabel:           v.GetString("ring_label"),
		RingLabelTag:        v.GetBool("ring_label_tag"),
		Language:            v.GetString("language"),
		UpdateSigner:        v.GetString("update_signer"),
	}
}

type schema struct {
	Account             string `json:"account"`
	Token               string `json:"token"`
	Hidden              bool   `json:"hidden"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
	TitleMode           string `json:"title_mode"`
	TitleTemplate       string `json:"title_template"`
	TitleRequests       bool   `json:"title_requests"`
	RingEnabled         bool   `json:"ring_enabled"`
	RingColored         bool   `json:"ring_colored"`
	RingColorMode       string `json:"ring_color_mode"`
	RingReverse         bool   `json:"ring_reverse"`
	RingLabel           string `json:"ring_label"`
	RingLabelTag        bool   `json:"ring_label_tag"`
	Language            string `json:"language"`
	UpdateSigner        string `json:"update_signer"`
}

func toSchema(settings domain.Settings) schema {
	return schema{
		Account:             settings.Account,
		Token:               string(settings.Token),
		Hidden:              settings.Hidden,
		PollIntervalSeconds: settings.PollIntervalSeconds,
		TitleMode:           settings.TitleMode,
		TitleTemplate:       settings.TitleTemplate,
		TitleRequests:       settings.TitleRequests,
		RingEnabled:         settings.RingEnabled,
		RingColored:         settings.RingColored,
		RingColorMode:       settings.RingColorMode,
		RingReverse:         settings.RingReverse,
		RingLabel:           settings.RingLabel,
		RingLabelTag:        settings.RingLabelTag,
		Language:            settings.Language,
		UpdateSigner:        settings.UpdateSigner,
	}
}
