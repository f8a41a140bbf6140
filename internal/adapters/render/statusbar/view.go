package statusbar

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/packybar/internal/application"
	"github.com/bnema/packybar/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now      time.Time
	Settings domain.Settings
}

// renderView prints what the menu bar would show: the title line followed by
// usage bars and the dropdown fields.
func renderView(snapshot domain.Snapshot, opts RenderOptions, s styles) string {
	state := application.Derive(snapshot, opts.Settings, opts.Now)

	header := s.app.Render("PackyBar")
	if title := application.Title(state, opts.Settings); title != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", s.title.Render(title))
	}

	lines := []string{header}

	if state.HasData {
		lines = append(lines,
			usageBar("daily", state.DailyPercent, s),
			usageBar("monthly", state.MonthlyPercent, s),
		)
	} else {
		lines = append(lines, s.empty.Render("No cached data yet. Run `packybar refresh`."))
	}

	for _, field := range application.MenuFields(state, opts.Settings, opts.Now) {
		lines = append(lines, fieldLine(field, state, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func fieldLine(field string, state application.RenderState, s styles) string {
	if state.Err != "" && strings.Contains(field, state.Err) {
		return s.warning.Render(field)
	}

	return s.detail.Render(field)
}

func usageBar(label string, percent float64, s styles) string {
	const width = 24

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled > width {
		filled = width
	}

	bar := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)

	meta := s.barLabel.Render(fmt.Sprintf("%3.0f%% %s", clampPercent(percent), label))

	return lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", meta)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
