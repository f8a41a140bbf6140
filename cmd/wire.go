package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/packybar/internal/adapters/api"
	"github.com/bnema/packybar/internal/adapters/release"
	statusbar "github.com/bnema/packybar/internal/adapters/render/statusbar"
	settingsstore "github.com/bnema/packybar/internal/adapters/settings"
	statestore "github.com/bnema/packybar/internal/adapters/state"
	"github.com/bnema/packybar/internal/application"
	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
	"github.com/bnema/packybar/internal/version"
)

type app struct {
	settingsStore  *settingsstore.Store
	stateStore     *statestore.Store
	statusRenderer func(domain.Snapshot, statusbar.RenderOptions) (string, error)
	baseURL        string
	feedURL        string
	userAgent      string
	now            func() time.Time
}

func wireApp() (*app, error) {
	settingsStore, err := settingsstore.NewStore()
	if err != nil {
		return nil, fmt.Errorf("wire settings store: %w", err)
	}

	stateStore, err := statestore.NewStore()
	if err != nil {
		return nil, fmt.Errorf("wire state store: %w", err)
	}

	return &app{
		settingsStore:  settingsStore,
		stateStore:     stateStore,
		statusRenderer: statusbar.Render,
		baseURL:        os.Getenv("PACKYBAR_BASE_URL"),
		feedURL:        os.Getenv("PACKYBAR_FEED_URL"),
		userAgent:      "packybar/" + version.Version,
		now:            time.Now,
	}, nil
}

func (a *app) loadSettings() domain.Settings {
	settings, err := a.settingsStore.Load()
	if err != nil {
		return domain.DefaultSettings()
	}
	return settings
}

func (a *app) usageAPI() *api.Client {
	var opts []api.Option
	if a.baseURL != "" {
		opts = append(opts, api.WithBaseURL(a.baseURL))
	}

	return api.NewClient(a.loadSettings, a.userAgent, opts...)
}

func (a *app) refresher() *application.Refresher {
	return application.NewRefresher(a.usageAPI(), a.stateStore, ports.SystemClock{})
}

func (a *app) releaseFeed() *release.Feed {
	var opts []release.FeedOption
	if a.feedURL != "" {
		opts = append(opts, release.WithFeedURL(a.feedURL))
	}

	return release.NewFeed(a.userAgent, opts...)
}

func (a *app) installer(settings domain.Settings) *release.Installer {
	return release.NewInstaller(
		a.releaseFeed(),
		domain.ParseVersion(version.Version),
		envOrDefault("PACKYBAR_BUNDLE_PATH", "/Applications/PackyBar.app"),
		envOrDefault("PACKYBAR_BUNDLE_ID", "com.packyme.packybar"),
		settings.UpdateSigner,
	)
}

func (a *app) ringPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".packybar", "ring.png"), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
