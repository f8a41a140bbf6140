package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/packybar/internal/adapters/notify"
	"github.com/bnema/packybar/internal/adapters/ring"
	"github.com/bnema/packybar/internal/application"
	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newRunCmd(app *app) *cobra.Command {
	var (
		once     bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the background poll loop",
		Long:  "run polls the billing API on the configured interval, keeps the state snapshot and ring image current, and posts token-expiry and update notifications. The menu-bar shell reads its output files.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(!once, logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			daemon, err := newDaemon(app, log)
			if err != nil {
				return err
			}

			daemon.notifyOnUpdate(ctx)

			if once {
				daemon.cycle(ctx, true)
				return nil
			}

			return daemon.loop(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single refresh cycle and exit")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	return cmd
}

type daemon struct {
	app       *app
	log       *zap.Logger
	refresher *application.Refresher
	ring      *ring.Renderer
	notifier  *notify.Notifier
	expiry    *application.ExpiryTracker
}

func newDaemon(app *app, log *zap.Logger) (*daemon, error) {
	ringPath, err := app.ringPath()
	if err != nil {
		return nil, err
	}

	refresher := app.refresher()
	renderer := ring.NewRenderer(ringPath)

	// Seed the memoization key so an unchanged ring survives a restart.
	if snapshot, _ := refresher.Snapshot(); snapshot.RingSignature != "" {
		renderer.SetLastSignature(snapshot.RingSignature)
	}

	return &daemon{
		app:       app,
		log:       log,
		refresher: refresher,
		ring:      renderer,
		notifier:  notify.New(log),
		expiry:    &application.ExpiryTracker{},
	}, nil
}

// loop refreshes immediately, then on every tick of the configured interval.
// A config file change re-renders from the cached snapshot without a fetch,
// so a language or ring toggle takes effect right away.
func (d *daemon) loop(ctx context.Context) error {
	d.cycle(ctx, true)

	configChanged := d.watchConfig()

	interval := d.pollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("shutting down")
			return nil
		case <-ticker.C:
			d.cycle(ctx, false)

			if next := d.pollInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
				d.log.Info("poll interval changed", zap.Duration("interval", interval))
			}
		case <-configChanged:
			d.rerender()
		}
	}
}

// watchConfig coalesces config file change events into a single-slot channel.
func (d *daemon) watchConfig() <-chan struct{} {
	changed := make(chan struct{}, 1)

	watcher := viper.New()
	watcher.SetConfigFile(d.app.settingsStore.Path())
	watcher.SetConfigType("json")
	_ = watcher.ReadInConfig()
	watcher.OnConfigChange(func(fsnotify.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	watcher.WatchConfig()

	return changed
}

// rerender recomputes the title and ring from the cached snapshot with the
// current settings, without touching the network.
func (d *daemon) rerender() {
	settings := d.app.loadSettings()
	snapshot, _ := d.refresher.Snapshot()
	state := application.Derive(snapshot, settings, d.app.now())

	d.log.Info("config changed", zap.String("title", application.Title(state, settings)))
	d.renderRing(state, settings)
}

func (d *daemon) pollInterval() time.Duration {
	settings := d.app.loadSettings()
	return time.Duration(settings.PollIntervalSeconds) * time.Second
}

func (d *daemon) cycle(ctx context.Context, force bool) {
	settings := d.app.loadSettings()
	now := d.app.now()

	if err := d.refresher.Refresh(ctx, force); err != nil {
		d.log.Warn("refresh failed", zap.Error(err))
	}

	snapshot, phase := d.refresher.Snapshot()
	state := application.Derive(snapshot, settings, now)

	d.log.Info("refreshed",
		zap.Int("phase", int(phase)),
		zap.String("title", application.Title(state, settings)),
	)

	d.renderRing(state, settings)

	if d.expiry.CrossedExpiry(settings.Token, now) {
		if err := d.notifier.Notify("PackyBar", "API token has expired"); err != nil {
			d.log.Warn("notify failed", zap.Error(err))
		}
	}
}

func (d *daemon) renderRing(state application.RenderState, settings domain.Settings) {
	spec, ok := application.DeriveRing(state, settings)
	if !ok {
		return
	}

	opts := ring.Options{
		Percent:   spec.Percent,
		Colored:   spec.Colored,
		ColorMode: spec.ColorMode,
		Reverse:   spec.Reverse,
		Label:     spec.Label,
	}

	wrote, err := d.ring.Render(opts)
	if err != nil {
		d.log.Warn("ring render failed", zap.Error(err))
		return
	}

	if wrote {
		d.refresher.SetRingSignature(opts.Signature())
		d.log.Debug("ring updated", zap.String("signature", opts.Signature()))
	}
}

// notifyOnUpdate posts a one-time notice when a newer release is published.
// Failures are logged and ignored; the poll loop never depends on the feed.
func (d *daemon) notifyOnUpdate(ctx context.Context) {
	installer := d.app.installer(d.app.loadSettings())

	release, err := installer.Check(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoUpdate) {
			d.log.Debug("update check failed", zap.Error(err))
		}
		return
	}

	message := fmt.Sprintf("Version %s is available, run `packybar update install`", release.Tag)
	if err := d.notifier.Notify("PackyBar", message); err != nil {
		d.log.Warn("notify failed", zap.Error(err))
	}
}
