package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
)

// Phase is the refresh lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseFetching
	PhaseOK
	PhaseError
)

// minRefreshInterval debounces non-forced triggers so a timer tick and a
// menu action firing back-to-back cost one fetch.
const minRefreshInterval = 2 * time.Second

// Refresher owns the poll cycle: it calls the backend, keeps the last-good
// snapshot for re-rendering without a refetch, and persists it through the
// state store. One mutex guards the snapshot; it is never held across
// network calls.
type Refresher struct {
	api   ports.UsageAPI
	state ports.StateStore
	clock ports.Clock

	mu          sync.Mutex
	snapshot    domain.Snapshot
	phase       Phase
	lastRefresh time.Time
}

func NewRefresher(api ports.UsageAPI, state ports.StateStore, clock ports.Clock) *Refresher {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	r := &Refresher{
		api:   api,
		state: state,
		clock: clock,
	}

	if state != nil {
		if cached, err := state.Load(); err == nil && cached.HasData() {
			r.snapshot = cached
			r.phase = PhaseOK
			if cached.LastError != "" {
				r.phase = PhaseError
			}
		}
	}

	return r
}

// Snapshot returns the cached refresh outcome and the current phase.
func (r *Refresher) Snapshot() (domain.Snapshot, Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot, r.phase
}

// Refresh runs one poll cycle. Non-forced calls inside the debounce window
// are a no-op. The mandatory account-info fetch failing leaves the previous
// numbers in place and flips the phase to PhaseError; usage and subscription
// failures are swallowed.
func (r *Refresher) Refresh(ctx context.Context, force bool) error {
	r.mu.Lock()
	now := r.clock.Now()
	if !force && !r.lastRefresh.IsZero() && now.Sub(r.lastRefresh) < minRefreshInterval {
		r.mu.Unlock()
		return nil
	}
	r.lastRefresh = now
	r.phase = PhaseFetching
	r.mu.Unlock()

	info, err := r.api.AccountInfo(ctx)
	if err != nil {
		r.mu.Lock()
		r.snapshot.LastError = err.Error()
		r.snapshot.FetchedAt = now
		r.phase = PhaseError
		snapshot := r.snapshot
		r.mu.Unlock()

		r.persist(snapshot)
		return err
	}

	// Best-effort extras; a nil result with a nil error simply means the
	// backend could not serve them for this credential.
	usage, usageErr := r.api.UsageStats(ctx)
	if usageErr != nil {
		usage = nil
	}
	period, periodErr := r.api.SubscriptionPeriod(ctx)
	if periodErr != nil {
		period = nil
	}

	r.mu.Lock()
	r.snapshot.Info = &info
	r.snapshot.Usage = usage
	r.snapshot.Period = period
	r.snapshot.LastError = ""
	r.snapshot.FetchedAt = now
	r.phase = PhaseOK
	snapshot := r.snapshot
	r.mu.Unlock()

	r.persist(snapshot)
	return nil
}

// SetRingSignature records the last rendered ring signature so equal
// signatures skip the redraw even across restarts.
func (r *Refresher) SetRingSignature(signature string) {
	r.mu.Lock()
	r.snapshot.RingSignature = signature
	snapshot := r.snapshot
	r.mu.Unlock()

	r.persist(snapshot)
}

func (r *Refresher) persist(snapshot domain.Snapshot) {
	if r.state == nil {
		return
	}
	_ = r.state.Save(snapshot)
}
