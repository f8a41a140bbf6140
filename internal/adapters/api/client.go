package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
)

const (
	infoPath          = "/api/backend/users/info"
	usageStatsPath    = "/api/backend/users/%s/usage-stats?days=30"
	subscriptionsPath = "/api/backend/subscriptions?page=1&per_page=5"

	metadataTimeout = 10 * time.Second
	maxResponseSize = 1 << 20
)

// SettingsSource supplies the current settings at fetch time so account and
// credential changes take effect on the next cycle without rewiring.
type SettingsSource func() domain.Settings

// Client is the read-only billing backend client.
type Client struct {
	httpClient   *http.Client
	settings     SettingsSource
	userAgent    string
	baseOverride string
}

var _ ports.UsageAPI = (*Client)(nil)

// Option customizes the client; used by tests to point at a local server.
type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseOverride = strings.TrimRight(url, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(settings SettingsSource, userAgent string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: metadataTimeout},
		settings:   settings,
		userAgent:  userAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) baseURL(account string) string {
	if c.baseOverride != "" {
		return c.baseOverride
	}
	return domain.EnvironmentFor(account).BaseURL
}

// AccountInfo fetches the mandatory billing snapshot. The response is either
// the info object directly or wrapped as {"data": {...}}; one unwrap step
// here keeps downstream code on a single canonical shape.
func (c *Client) AccountInfo(ctx context.Context) (domain.AccountInfo, error) {
	settings := c.settings()
	if settings.Token.IsEmpty() {
		return domain.AccountInfo{}, domain.ErrNoCredential
	}

	body, err := c.get(ctx, c.baseURL(settings.Account)+infoPath, settings.Token)
	if err != nil {
		return domain.AccountInfo{}, err
	}

	var payload infoPayload
	if err := json.Unmarshal(unwrapEnvelope(body), &payload); err != nil {
		return domain.AccountInfo{}, fmt.Errorf("decode account info: %w", err)
	}

	return payload.toDomain(), nil
}

// UsageStats is best-effort: it is only attempted for signed-token
// credentials and reports (nil, nil) on any decode, network or parse
// failure.
func (c *Client) UsageStats(ctx context.Context) (*domain.UsageStats, error) {
	settings := c.settings()
	if !settings.Token.IsSignedToken() {
		return nil, nil
	}

	userID := settings.Token.UserID()
	if userID == "" {
		return nil, nil
	}

	// The usage-stats endpoint lives on the codex environment regardless of
	// the selected account. The id comes from an unverified token claim, so
	// it is escaped before entering the path.
	endpoint := c.baseURL(domain.AccountCodex) + fmt.Sprintf(usageStatsPath, url.PathEscape(userID))

	body, err := c.get(ctx, endpoint, settings.Token)
	if err != nil {
		return nil, nil
	}

	var payload usagePayload
	if err := json.Unmarshal(unwrapEnvelope(body), &payload); err != nil {
		return nil, nil
	}

	return payload.toDomain(), nil
}

// SubscriptionPeriod is best-effort: nil on missing credential, non-2xx,
// absent period fields, or timestamp parse failure.
func (c *Client) SubscriptionPeriod(ctx context.Context) (*domain.Period, error) {
	settings := c.settings()
	if settings.Token.IsEmpty() {
		return nil, nil
	}

	body, err := c.get(ctx, c.baseURL(settings.Account)+subscriptionsPath, settings.Token)
	if err != nil {
		return nil, nil
	}

	var payload subscriptionsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil
	}

	entry, ok := payload.pick()
	if !ok {
		return nil, nil
	}

	start, startErr := parseTimestamp(entry.CurrentPeriodStart)
	end, endErr := parseTimestamp(entry.CurrentPeriodEnd)
	if startErr != nil || endErr != nil {
		return nil, nil
	}

	return &domain.Period{Start: start, End: end}, nil
}

func (c *Client) get(ctx context.Context, url string, token domain.Credential) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+strings.TrimSpace(string(token)))
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return nil, domain.NewStatusError(response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

// unwrapEnvelope tolerates the {"data": {...}} wrapper some endpoints use.
func unwrapEnvelope(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		trimmed := strings.TrimSpace(string(envelope.Data))
		if strings.HasPrefix(trimmed, "{") {
			return envelope.Data
		}
	}

	return body
}

// flexFloat decodes a JSON number or a numeric string; anything else is 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = 0
		return nil
	}

	*f = flexFloat(value)
	return nil
}

type infoPayload struct {
	DailyBudgetUSD   flexFloat  `json:"daily_budget_usd"`
	DailySpentUSD    flexFloat  `json:"daily_spent_usd"`
	MonthlyBudgetUSD flexFloat  `json:"monthly_budget_usd"`
	MonthlySpentUSD  flexFloat  `json:"monthly_spent_usd"`
	BalanceUSD       *flexFloat `json:"balance_usd"`
	PlanExpiresAt    string     `json:"plan_expires_at"`
}

func (p infoPayload) toDomain() domain.AccountInfo {
	info := domain.AccountInfo{
		DailyBudget:   float64(p.DailyBudgetUSD),
		DailySpent:    float64(p.DailySpentUSD),
		MonthlyBudget: float64(p.MonthlyBudgetUSD),
		MonthlySpent:  float64(p.MonthlySpentUSD),
	}

	if p.BalanceUSD != nil {
		balance := float64(*p.BalanceUSD)
		info.Balance = &balance
	}

	if expiry, err := parseTimestamp(p.PlanExpiresAt); err == nil {
		info.PlanExpiresAt = expiry
	}

	return info
}

type usagePayload struct {
	TodayUsage *struct {
		Date     string `json:"date"`
		APICalls *int   `json:"api_calls"`
	} `json:"today_usage"`
	DailyTrend []struct {
		Date     string `json:"date"`
		APICalls int    `json:"api_calls"`
	} `json:"daily_trend"`
}

func (p usagePayload) toDomain() *domain.UsageStats {
	stats := &domain.UsageStats{}

	if p.TodayUsage != nil && p.TodayUsage.APICalls != nil {
		calls := *p.TodayUsage.APICalls
		stats.TodayCalls = &calls
	}

	for _, point := range p.DailyTrend {
		stats.Trend = append(stats.Trend, domain.TrendPoint{
			Date:  point.Date,
			Calls: point.APICalls,
		})
	}

	return stats
}

type subscriptionEntry struct {
	Status             string `json:"status"`
	CurrentPeriodStart string `json:"current_period_start"`
	CurrentPeriodEnd   string `json:"current_period_end"`
}

type subscriptionsPayload struct {
	Data          []subscriptionEntry `json:"data"`
	Subscriptions []subscriptionEntry `json:"subscriptions"`
}

// pick prefers the entry whose status is "active", else the first one.
func (p subscriptionsPayload) pick() (subscriptionEntry, bool) {
	entries := p.Subscriptions
	if len(entries) == 0 {
		entries = p.Data
	}
	if len(entries) == 0 {
		return subscriptionEntry{}, false
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Status, "active") {
			return entry, true
		}
	}

	return entries[0], true
}

// parseTimestamp accepts RFC 3339 with a trailing Z or explicit offset, and
// bare timestamps without an offset (interpreted as UTC).
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if strings.HasSuffix(raw, "Z") {
		raw = strings.TrimSuffix(raw, "Z") + "+00:00"
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}

	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}

	return parsed, nil
}
