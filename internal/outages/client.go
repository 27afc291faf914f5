package outages

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/blackoutkit/blackout/internal/engine"
)

const defaultBaseURL = "https://api.outagecalendar.example.com"

// Client fetches the published grid availability schedule for an outage
// group and converts it to the engine's PowerSchedule shape.
type Client struct {
	httpClient *http.Client
	baseURL    string
	group      string
}

// NewClient creates a schedule client. An empty baseURL uses the default
// provider endpoint.
func NewClient(baseURL, group string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		group:      group,
	}
}

// scheduleResponse represents the provider's API response
type scheduleResponse struct {
	Group string `json:"group"`
	Date  string `json:"date"`
	Slots []slot `json:"slots"`
}

type slot struct {
	From   string `json:"from"`   // HH:MM
	To     string `json:"to"`     // HH:MM
	Status string `json:"status"` // "on" or "off"
}

// FetchSchedule fetches today's availability windows for the configured
// group. Only "on" slots become schedule periods; the provider also
// publishes "off" slots, which are implied by the gaps.
func (c *Client) FetchSchedule(ctx context.Context) (engine.PowerSchedule, error) {
	params := url.Values{}
	params.Add("group", c.group)

	fullURL := fmt.Sprintf("%s/v1/schedule?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return engine.PowerSchedule{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return engine.PowerSchedule{}, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return engine.PowerSchedule{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var schedResp scheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&schedResp); err != nil {
		return engine.PowerSchedule{}, fmt.Errorf("decoding response: %w", err)
	}

	periods := make([]engine.TimeRange, 0, len(schedResp.Slots))
	for _, sl := range schedResp.Slots {
		if sl.Status != "on" {
			continue
		}
		start, err := parseClock(sl.From)
		if err != nil {
			return engine.PowerSchedule{}, fmt.Errorf("slot %q: %w", sl.From, err)
		}
		end, err := parseClock(sl.To)
		if err != nil {
			return engine.PowerSchedule{}, fmt.Errorf("slot %q: %w", sl.To, err)
		}
		periods = append(periods, engine.TimeRange{Start: start, End: end})
	}

	sort.Slice(periods, func(i, j int) bool { return periods[i].Start < periods[j].Start })

	return engine.PowerSchedule{Periods: periods}, nil
}

// parseClock converts "HH:MM" to fractional hours. "24:00" maps to 0,
// matching the wrap semantics of TimeRange.
func parseClock(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	hour := float64(h) + float64(m)/60
	if hour >= 24 {
		hour -= 24
	}
	return hour, nil
}

// MockSchedule generates a deterministic offline schedule for a group,
// used when the provider is unreachable or unconfigured. Groups get a
// staggered rotation of three four-hour availability windows; later
// groups shift the rotation so neighbouring groups are not dark at the
// same time.
func MockSchedule(group string) engine.PowerSchedule {
	offset := 0
	for _, r := range group {
		offset += int(r)
	}
	offset = (offset % 8) // up to 8h stagger

	periods := make([]engine.TimeRange, 0, 3)
	for i := 0; i < 3; i++ {
		start := float64((offset + i*8) % 24)
		end := float64((offset + i*8 + 4) % 24)
		periods = append(periods, engine.TimeRange{Start: start, End: end})
	}
	return engine.PowerSchedule{Periods: periods}
}
