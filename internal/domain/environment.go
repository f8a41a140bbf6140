package domain

// Environment is one selectable account backend.
type Environment struct {
	BaseURL      string
	DashboardURL string
}

var environments = map[string]Environment{
	AccountShared: {
		BaseURL:      "https://www.packycode.com",
		DashboardURL: "https://www.packycode.com/dashboard",
	},
	AccountPrivate: {
		BaseURL:      "https://share.packycode.com",
		DashboardURL: "https://share.packycode.com/dashboard",
	},
	AccountCodex: {
		BaseURL:      "https://codex.packycode.com",
		DashboardURL: "https://codex.packycode.com/dashboard",
	},
}

// EnvironmentFor maps an account selector to its backend, falling back to
// the shared environment for unknown selectors.
func EnvironmentFor(account string) Environment {
	if env, ok := environments[account]; ok {
		return env
	}
	return environments[AccountShared]
}
