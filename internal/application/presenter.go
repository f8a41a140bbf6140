package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/packybar/internal/domain"
)

// RenderState is the fully derived display model: everything the title,
// menu fields and ring need, computed once per render from the snapshot and
// the settings. It holds no references back into the refresher.
type RenderState struct {
	HasData   bool
	Err       string
	FetchedAt time.Time

	DailySpent     float64
	DailyBudget    float64
	DailyPercent   float64
	DailyRemaining float64

	MonthlySpent     float64
	MonthlyBudget    float64
	MonthlyPercent   float64
	MonthlyRemaining float64

	Balance *float64

	TodayCalls   *int
	TrendTotal   int
	TrendAverage int
	TrendOK      bool

	Cycle    domain.Cycle
	DaysLeft int
	Renewal  domain.RenewalState

	TokenExpiresAt time.Time
}

// Derive computes the render state. It is a pure function of its inputs so
// a language switch or config reload re-renders without refetching.
func Derive(snapshot domain.Snapshot, settings domain.Settings, now time.Time) RenderState {
	state := RenderState{
		Err:            snapshot.LastError,
		FetchedAt:      snapshot.FetchedAt,
		TokenExpiresAt: settings.Token.ExpiresAt(),
	}

	info := snapshot.Info
	if info == nil {
		return state
	}

	state.HasData = true
	state.DailySpent = info.DailySpent
	state.DailyBudget = info.DailyBudget
	state.DailyPercent = domain.PercentUsed(info.DailySpent, info.DailyBudget)
	state.DailyRemaining = domain.Remaining(info.DailySpent, info.DailyBudget)
	state.MonthlySpent = info.MonthlySpent
	state.MonthlyBudget = info.MonthlyBudget
	state.MonthlyPercent = domain.PercentUsed(info.MonthlySpent, info.MonthlyBudget)
	state.MonthlyRemaining = domain.Remaining(info.MonthlySpent, info.MonthlyBudget)
	state.Balance = info.Balance

	if snapshot.Usage != nil {
		state.TodayCalls = snapshot.Usage.TodayCalls
		state.TrendTotal, state.TrendAverage, state.TrendOK = snapshot.Usage.TrendSummary()
	}

	state.Cycle = domain.ResolveCycle(snapshot.Period, info.PlanExpiresAt, now)
	state.DaysLeft = state.Cycle.DaysLeft(now)
	state.Renewal = state.Cycle.Renewal(now)

	return state
}

// titlePlaceholders builds the substitution context. Missing values render
// as a literal "-".
func titlePlaceholders(state RenderState) map[string]string {
	balance := "-"
	if state.Balance != nil {
		balance = fmt.Sprintf("%.2f", *state.Balance)
	}

	requests := "-"
	if state.TodayCalls != nil {
		requests = fmt.Sprintf("%d", *state.TodayCalls)
	}

	return map[string]string{
		"d_spent": fmt.Sprintf("%.1f", state.DailySpent),
		"d_limit": fmt.Sprintf("%.0f", state.DailyBudget),
		"d_pct":   fmt.Sprintf("%.0f", state.DailyPercent),
		"m_spent": fmt.Sprintf("%.1f", state.MonthlySpent),
		"m_limit": fmt.Sprintf("%.0f", state.MonthlyBudget),
		"m_pct":   fmt.Sprintf("%.0f", state.MonthlyPercent),
		"bal":     balance,
		"d_req":   requests,
	}
}

// Title renders the status-bar title. Hidden settings always yield an empty
// title; no data yields the localized "no data" marker.
func Title(state RenderState, settings domain.Settings) string {
	if settings.Hidden {
		return ""
	}

	labels := labelsFor(settings.Language)
	if !state.HasData {
		// A missing credential reads as "no data", not as an error.
		if state.Err != "" && !strings.Contains(state.Err, domain.ErrNoCredential.Error()) {
			return labels.TitleError
		}
		return labels.TitleNoData
	}

	ctx := titlePlaceholders(state)

	if settings.TitleMode == domain.TitleModeCustom {
		template := settings.TitleTemplate
		title := substituteTemplate(template, ctx)
		if settings.TitleRequests && state.TodayCalls != nil && !strings.Contains(template, "{d_req}") {
			title = fmt.Sprintf("%s | Req %s", title, ctx["d_req"])
		}
		return title
	}

	title := fmt.Sprintf("D %s%% | M %s%%", ctx["d_pct"], ctx["m_pct"])
	if settings.TitleRequests && state.TodayCalls != nil {
		title = fmt.Sprintf("%s | Req %s", title, ctx["d_req"])
	}
	return title
}

// substituteTemplate replaces only recognized {placeholder} keys and leaves
// any other braces intact, then normalizes whitespace. It never fails on a
// malformed template.
func substituteTemplate(template string, ctx map[string]string) string {
	out := template
	for key, value := range ctx {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}

	return strings.Join(strings.Fields(out), " ")
}

// FormatCountdown renders a duration as days+hours, hours+minutes, or bare
// minutes, whichever is the coarsest non-empty form.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("%dm", minutes)
	}
}
