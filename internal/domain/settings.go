package domain

// Settings is the flat recognized-key configuration. The on-disk file always
// round-trips through defaults plus the recognized subset; unknown keys are
// dropped on save.
type Settings struct {
	Account             string
	Token               Credential
	Hidden              bool
	PollIntervalSeconds int
	TitleMode           string
	TitleTemplate       string
	TitleRequests       bool
	RingEnabled         bool
	RingColored         bool
	RingColorMode       string
	RingReverse         bool
	RingLabel           string
	RingLabelTag        bool
	Language            string
	UpdateSigner        string
}

const (
	AccountShared  = "shared"
	AccountPrivate = "private"
	AccountCodex   = "codex"

	TitleModePercent = "percent"
	TitleModeCustom  = "custom"

	RingColorThreshold = "threshold"
	RingColorGradient  = "gradient"
	RingColorFlat      = "flat"

	RingLabelNone     = "none"
	RingLabelPercent  = "percent"
	RingLabelRequests = "requests"
	RingLabelSpent    = "spent"

	LanguageEN = "en"
	LanguageZH = "zh"
)

// DefaultSettings mirrors the defaults written on first run.
func DefaultSettings() Settings {
	return Settings{
		Account:             AccountShared,
		Token:               "",
		Hidden:              false,
		PollIntervalSeconds: 180,
		TitleMode:           TitleModePercent,
		TitleTemplate:       "D {d_pct}% | M {m_pct}%",
		TitleRequests:       false,
		RingEnabled:         false,
		RingColored:         false,
		RingColorMode:       RingColorThreshold,
		RingReverse:         false,
		RingLabel:           RingLabelNone,
		RingLabelTag:        false,
		Language:            LanguageEN,
		UpdateSigner:        "",
	}
}

// Normalize replaces out-of-range values with their defaults so downstream
// code never sees an unrecognized enum or a non-positive interval.
func (s Settings) Normalize() Settings {
	defaults := DefaultSettings()

	switch s.Account {
	case AccountShared, AccountPrivate, AccountCodex:
	default:
		s.Account = defaults.Account
	}

	if s.PollIntervalSeconds <= 0 {
		s.PollIntervalSeconds = defaults.PollIntervalSeconds
	}

	switch s.TitleMode {
	case TitleModePercent, TitleModeCustom:
	default:
		s.TitleMode = defaults.TitleMode
	}

	if s.TitleTemplate == "" {
		s.TitleTemplate = defaults.TitleTemplate
	}

	switch s.RingColorMode {
	case RingColorThreshold, RingColorGradient, RingColorFlat:
	default:
		s.RingColorMode = defaults.RingColorMode
	}

	switch s.RingLabel {
	case RingLabelNone, RingLabelPercent, RingLabelRequests, RingLabelSpent:
	default:
		s.RingLabel = defaults.RingLabel
	}

	switch s.Language {
	case LanguageEN, LanguageZH:
	default:
		s.Language = defaults.Language
	}

	return s
}
