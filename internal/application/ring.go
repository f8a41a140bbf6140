package application

import (
	"fmt"

	"github.com/bnema/packybar/internal/domain"
)

// RingSpec is the full input of one ring render, derived from the render
// state and the ring settings.
type RingSpec struct {
	Percent   int
	Colored   bool
	ColorMode string
	Reverse   bool
	Label     string
}

// DeriveRing computes the ring inputs. The second return is false when the
// ring is disabled or there is nothing to draw yet.
func DeriveRing(state RenderState, settings domain.Settings) (RingSpec, bool) {
	if !settings.RingEnabled || !state.HasData {
		return RingSpec{}, false
	}

	spec := RingSpec{
		Percent:   domain.RoundHalfAway(state.DailyPercent),
		Colored:   settings.RingColored,
		ColorMode: settings.RingColorMode,
		Reverse:   settings.RingReverse,
		Label:     ringLabel(state, settings),
	}

	return spec, true
}

// ringLabel renders the centered label text, optionally prefixed with a
// one-letter source tag.
func ringLabel(state RenderState, settings domain.Settings) string {
	var tag, value string

	switch settings.RingLabel {
	case domain.RingLabelPercent:
		tag = "P"
		value = fmt.Sprintf("%d", domain.RoundHalfAway(state.DailyPercent))
	case domain.RingLabelRequests:
		tag = "R"
		value = "-"
		if state.TodayCalls != nil {
			value = fmt.Sprintf("%d", *state.TodayCalls)
		}
	case domain.RingLabelSpent:
		tag = "S"
		value = fmt.Sprintf("%.0f", state.DailySpent)
	default:
		return ""
	}

	if settings.RingLabelTag {
		return tag + value
	}

	return value
}
