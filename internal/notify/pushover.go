package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const pushoverAPI = "https://api.pushover.net/1/messages.json"

// PushoverClient sends push notifications via Pushover
type PushoverClient struct {
	httpClient *http.Client
	appToken   string
	userKey    string
}

type pushoverMessage struct {
	Token    string `json:"token"`
	User     string `json:"user"`
	Message  string `json:"message"`
	Title    string `json:"title,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// NewPushoverClient creates a Pushover client
func NewPushoverClient(appToken, userKey string) *PushoverClient {
	return &PushoverClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		appToken:   appToken,
		userKey:    userKey,
	}
}

// Configured reports whether credentials are present
func (p *PushoverClient) Configured() bool {
	return p.appToken != "" && p.userKey != ""
}

// Send delivers a notification with the given title and message
func (p *PushoverClient) Send(title, message string) error {
	if !p.Configured() {
		return fmt.Errorf("pushover credentials missing")
	}

	payload := pushoverMessage{
		Token:   p.appToken,
		User:    p.userKey,
		Message: message,
		Title:   title,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	resp, err := p.httpClient.Post(pushoverAPI, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover API returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOutageAlert warns that the current configuration will not survive
// the outage window after a schedule refresh
func (p *PushoverClient) SendOutageAlert(totalOutageHours int, minBatteryLevel float64) error {
	message := fmt.Sprintf(
		"New outage schedule: %d hours without grid power in the next 24h.\nProjected battery minimum: %.1f%%. The current appliance configuration will not survive; open the planner and pick a scenario.",
		totalOutageHours, minBatteryLevel,
	)
	return p.Send("Blackout planner", message)
}
