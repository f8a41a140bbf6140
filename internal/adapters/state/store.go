package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	stateDirName  = ".packybar"
	stateFileName = "state.toml"

	stateFileMode   = 0o600
	stateDirMode    = 0o700
	tempFilePattern = ".state-*.toml.tmp"

	schemaVersion = 1
)

// Store persists the last refresh snapshot so a restarted process can show
// cached data and skip redundant ring redraws.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ ports.StateStore = (*Store)(nil)

func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return NewStoreAt(filepath.Join(homeDir, stateDirName, stateFileName)), nil
}

func NewStoreAt(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

func (s *Store) Load() (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, nil
		}
		return domain.Snapshot{}, fmt.Errorf("read state file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		// A corrupt state file is not worth failing a refresh over.
		return domain.Snapshot{}, nil
	}
	if file.Version != schemaVersion {
		return domain.Snapshot{}, nil
	}

	return fromSchema(file), nil
}

func (s *Store) Save(snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(toSchema(snapshot))
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
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
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	cleanup = false
	return nil
}

type fileSchema struct {
	Version       int           `toml:"version"`
	FetchedAt     string        `toml:"fetched_at,omitempty"`
	LastError     string        `toml:"last_error,omitempty"`
	RingSignature string        `toml:"ring_signature,omitempty"`
	Info          *infoSchema   `toml:"info,omitempty"`
	Usage         *usageSchema  `toml:"usage,omitempty"`
	Period        *periodSchema `toml:"period,omitempty"`
}

type infoSchema struct {
	DailyBudget   float64  `toml:"daily_budget"`
	DailySpent    float64  `toml:"daily_spent"`
	MonthlyBudget float64  `toml:"monthly_budget"`
	MonthlySpent  float64  `toml:"monthly_spent"`
	Balance       *float64 `toml:"balance,omitempty"`
	PlanExpiresAt string   `toml:"plan_expires_at,omitempty"`
}

type usageSchema struct {
	TodayCalls *int          `toml:"today_calls,omitempty"`
	Trend      []trendSchema `toml:"trend,omitempty"`
}

type trendSchema struct {
	Date  string `toml:"date"`
	Calls int    `toml:"calls"`
}

type periodSchema struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

func toSchema(snapshot domain.Snapshot) fileSchema {
	file := fileSchema{
		Version:       schemaVersion,
		FetchedAt:     formatTime(snapshot.FetchedAt),
		LastError:     snapshot.LastError,
		RingSignature: snapshot.RingSignature,
	}

	if snapshot.Info != nil {
		file.Info = &infoSchema{
			DailyBudget:   snapshot.Info.DailyBudget,
			DailySpent:    snapshot.Info.DailySpent,
			MonthlyBudget: snapshot.Info.MonthlyBudget,
			MonthlySpent:  snapshot.Info.MonthlySpent,
			Balance:       snapshot.Info.Balance,
			PlanExpiresAt: formatTime(snapshot.Info.PlanExpiresAt),
		}
	}

	if snapshot.Usage != nil {
		usage := &usageSchema{TodayCalls: snapshot.Usage.TodayCalls}
		for _, point := range snapshot.Usage.Trend {
			usage.Trend = append(usage.Trend, trendSchema{Date: point.Date, Calls: point.Calls})
		}
		file.Usage = usage
	}

	if snapshot.Period != nil {
		file.Period = &periodSchema{
			Start: formatTime(snapshot.Period.Start),
			End:   formatTime(snapshot.Period.End),
		}
	}

	return file
}

func fromSchema(file fileSchema) domain.Snapshot {
	snapshot := domain.Snapshot{
		FetchedAt:     parseTime(file.FetchedAt),
		LastError:     file.LastError,
		RingSignature: file.RingSignature,
	}

	if file.Info != nil {
		snapshot.Info = &domain.AccountInfo{
			DailyBudget:   file.Info.DailyBudget,
			DailySpent:    file.Info.DailySpent,
			MonthlyBudget: file.Info.MonthlyBudget,
			MonthlySpent:  file.Info.MonthlySpent,
			Balance:       file.Info.Balance,
			PlanExpiresAt: parseTime(file.Info.PlanExpiresAt),
		}
	}

	if file.Usage != nil {
		usage := &domain.UsageStats{TodayCalls: file.Usage.TodayCalls}
		for _, point := range file.Usage.Trend {
			usage.Trend = append(usage.Trend, domain.TrendPoint{Date: point.Date, Calls: point.Calls})
		}
		snapshot.Usage = usage
	}

	if file.Period != nil {
		snapshot.Period = &domain.Period{
			Start: parseTime(file.Period.Start),
			End:   parseTime(file.Period.End),
		}
	}

	return snapshot
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
