package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logDirMode = 0o700

// New builds the process logger. The daemon writes JSON lines to a file
// under the application directory so a headless background process stays
// debuggable; interactive commands log to stderr in console format.
func New(daemon bool, levelOverride string) (*zap.Logger, error) {
	var cfg zap.Config
	if daemon {
		cfg = zap.NewProductionConfig()

		logPath, err := defaultLogPath()
		if err != nil {
			return nil, err
		}
		cfg.OutputPaths = []string{logPath}
		cfg.ErrorOutputPaths = []string{logPath}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if levelOverride != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(levelOverride)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelOverride, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return l, nil
}

func defaultLogPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".packybar")
	if err := os.MkdirAll(dir, logDirMode); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	return filepath.Join(dir, "packybar.log"), nil
}
