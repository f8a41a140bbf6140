package notify

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/bnema/packybar/internal/ports"
	"go.uber.org/zap"
)

// Notifier posts user notifications through the macOS notification center.
// Off macOS, or when osascript is unavailable, notifications degrade to log
// lines so the daemon loop never fails on a cosmetic path.
type Notifier struct {
	log     *zap.Logger
	execute func(script string) error
}

var _ ports.Notifier = (*Notifier)(nil)

func New(log *zap.Logger) *Notifier {
	return &Notifier{log: log, execute: runOsascript}
}

func (n *Notifier) Notify(title, message string) error {
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		if err := n.execute(script); err == nil {
			return nil
		}
		// Fall through to the log line.
	}

	n.log.Info("notification", zap.String("title", title), zap.String("message", message))
	return nil
}

func runOsascript(script string) error {
	return exec.Command("osascript", "-e", script).Run()
}
