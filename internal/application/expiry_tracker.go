package application

import (
	"sync"
	"time"

	"github.com/bnema/packybar/internal/domain"
)

// ExpiryTracker fires exactly once when the credential's exp claim crosses
// into the past. Replacing the credential or observing it not yet expired
// resets the one-time flag.
type ExpiryTracker struct {
	mu       sync.Mutex
	token    domain.Credential
	notified bool
}

// CrossedExpiry reports whether an expiry notification should fire now.
func (t *ExpiryTracker) CrossedExpiry(token domain.Credential, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token != t.token {
		t.token = token
		t.notified = false
	}

	expiry := token.ExpiresAt()
	if expiry.IsZero() {
		return false
	}

	if now.Before(expiry) {
		t.notified = false
		return false
	}

	if t.notified {
		return false
	}

	t.notified = true
	return true
}
