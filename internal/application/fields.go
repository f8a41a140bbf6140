package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/packybar/internal/domain"
)

// MenuFields renders the read-only dropdown lines in display order. The GUI
// shell shows them verbatim; the status command prints the same lines.
func MenuFields(state RenderState, settings domain.Settings, now time.Time) []string {
	labels := labelsFor(settings.Language)

	lines := []string{
		statusLine(state, labels),
		budgetLine(labels.Daily, state.DailySpent, state.DailyBudget, state.DailyRemaining, labels),
		requestsLine(state, labels),
		trendLine(state, labels),
		budgetLine(labels.Monthly, state.MonthlySpent, state.MonthlyBudget, state.MonthlyRemaining, labels),
		balanceLine(state, labels),
	}

	if state.HasData {
		lines = append(lines, cycleLine(state, labels))
		if message := renewalMessage(state, labels); message != "" {
			lines = append(lines, message)
		}
	}

	if line := tokenExpiryLine(state, now, labels); line != "" {
		lines = append(lines, line)
	}

	lines = append(lines, fmt.Sprintf("%s: %s", labels.LastUpdate, lastUpdateText(state, labels)))

	return lines
}

func statusLine(state RenderState, labels labelSet) string {
	switch {
	case state.Err != "" && strings.Contains(state.Err, domain.ErrNoCredential.Error()):
		return labels.StatusNoToken
	case state.Err != "":
		return fmt.Sprintf(labels.StatusError, state.Err)
	case !state.HasData:
		return labels.StatusNoData
	default:
		return labels.StatusOK
	}
}

func budgetLine(name string, spent, budget, remaining float64, labels labelSet) string {
	if budget <= 0 {
		left := fmt.Sprintf(labels.RemainingWrapped, labels.Missing)
		return fmt.Sprintf("%s: %.2f/%s (%s)", name, spent, labels.Missing, left)
	}

	left := fmt.Sprintf(labels.RemainingWrapped, fmt.Sprintf("%.2f", remaining))
	return fmt.Sprintf("%s: %.2f/%.2f (%s)", name, spent, budget, left)
}

// A fetch error clears the request and trend lines even when an earlier
// cycle left counts in the snapshot; stale counts next to an error status
// read as current.
func requestsLine(state RenderState, labels labelSet) string {
	if state.Err != "" || state.TodayCalls == nil {
		return fmt.Sprintf("%s: %s", labels.Requests, labels.Missing)
	}
	return fmt.Sprintf("%s: %d", labels.Requests, *state.TodayCalls)
}

func trendLine(state RenderState, labels labelSet) string {
	if state.Err != "" || !state.TrendOK {
		return fmt.Sprintf("%s: %s", labels.Last30, labels.Missing)
	}

	summary := fmt.Sprintf(labels.Last30Format, state.TrendTotal, state.TrendAverage)
	return fmt.Sprintf("%s: %s", labels.Last30, summary)
}

func balanceLine(state RenderState, labels labelSet) string {
	if state.Balance == nil {
		return fmt.Sprintf("%s: %s", labels.Balance, labels.Missing)
	}
	return fmt.Sprintf("%s: $%.2f", labels.Balance, *state.Balance)
}

func cycleLine(state RenderState, labels labelSet) string {
	daysLeft := fmt.Sprintf(labels.CycleDaysLeft, state.DaysLeft)
	if state.DaysLeft < 0 {
		daysLeft = fmt.Sprintf(labels.CycleDaysLeft, 0)
	}

	return fmt.Sprintf("%s: %s - %s (%s)",
		labels.CyclePrefix,
		state.Cycle.Start.Format("2006-01-02"),
		state.Cycle.End.Format("2006-01-02"),
		daysLeft,
	)
}

func renewalMessage(state RenderState, labels labelSet) string {
	switch state.Renewal {
	case domain.RenewalExpired:
		return labels.RenewalExpired
	case domain.RenewalSoon:
		return fmt.Sprintf(labels.RenewalSoon, state.DaysLeft)
	default:
		return ""
	}
}

func tokenExpiryLine(state RenderState, now time.Time, labels labelSet) string {
	if state.TokenExpiresAt.IsZero() {
		return ""
	}

	remaining := state.TokenExpiresAt.Sub(now)
	if remaining <= 0 {
		return labels.TokenExpired
	}

	return fmt.Sprintf(labels.TokenExpiry, FormatCountdown(remaining))
}

func lastUpdateText(state RenderState, labels labelSet) string {
	if state.FetchedAt.IsZero() {
		return labels.Missing
	}
	return state.FetchedAt.Format("15:04:05")
}
