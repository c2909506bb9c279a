package torn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"torn_war_payouts/internal/app"
	"torn_war_payouts/internal/config"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.torn.com"

// Client talks to the Torn API. The API key is injected at construction;
// there is no process-wide credential state.
type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	apiCallCount int64
	apiCallMutex sync.Mutex
}

// NewClient creates a Torn API client with the provided API key
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a non-default API host,
// used by tests to point at a local server
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: config.APIRequestTimeout,
		},
	}
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// ResetAPICallCount resets the API call counter to zero
func (c *Client) ResetAPICallCount() {
	c.apiCallMutex.Lock()
	c.apiCallCount = 0
	c.apiCallMutex.Unlock()
}

// makeAPIRequest creates and executes an HTTP GET request to the Torn API
func (c *Client) makeAPIRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().
			Err(err).
			Str("url", url).
			Msg("API request failed")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	c.IncrementAPICall()
	return resp, nil
}

// handleAPIResponse processes the HTTP response and returns the body bytes
func (c *Client) handleAPIResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// GetRankedWarReport fetches the report for a completed ranked war
func (c *Client) GetRankedWarReport(ctx context.Context, warID int) (*app.RankedWarReport, error) {
	url := fmt.Sprintf("%s/torn/%d?selections=rankedwarreport&key=%s", c.baseURL, warID, c.apiKey)

	log.Debug().Int("war_id", warID).Msg("Fetching ranked war report")

	resp, err := c.makeAPIRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	body, err := c.handleAPIResponse(resp)
	if err != nil {
		return nil, err
	}

	var reportResponse app.RankedWarReportResponse
	if err := json.Unmarshal(body, &reportResponse); err != nil {
		return nil, fmt.Errorf("failed to decode war report response: %w", err)
	}

	if reportResponse.Error != nil {
		return nil, fmt.Errorf("API error fetching war report: %s (code %d)",
			reportResponse.Error.Message, reportResponse.Error.Code)
	}

	if reportResponse.RankedWarReport == nil {
		return nil, fmt.Errorf("war report response missing rankedwarreport payload")
	}

	log.Debug().
		Int("war_id", warID).
		Int("factions", len(reportResponse.RankedWarReport.Factions)).
		Msg("Successfully fetched ranked war report")

	return reportResponse.RankedWarReport, nil
}

// GetOwnProfile fetches the profile associated with the API key, used to
// discover our faction ID when it is not configured
func (c *Client) GetOwnProfile(ctx context.Context) (*app.ProfileFaction, error) {
	url := fmt.Sprintf("%s/user/?selections=profile&key=%s", c.baseURL, c.apiKey)

	log.Debug().Msg("Fetching own profile")

	resp, err := c.makeAPIRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	body, err := c.handleAPIResponse(resp)
	if err != nil {
		return nil, err
	}

	var profileResponse app.ProfileResponse
	if err := json.Unmarshal(body, &profileResponse); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}

	if profileResponse.Error != nil {
		return nil, fmt.Errorf("API error fetching profile: %s (code %d)",
			profileResponse.Error.Message, profileResponse.Error.Code)
	}

	if profileResponse.Faction == nil || profileResponse.Faction.FactionID == 0 {
		return nil, fmt.Errorf("could not determine faction from API key")
	}

	return profileResponse.Faction, nil
}

// GetAttackLog fetches one page of faction attacks within [from, to]
func (c *Client) GetAttackLog(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
	url := fmt.Sprintf("%s/faction/%d?selections=attacks&from=%d&to=%d&key=%s",
		c.baseURL, factionID, from, to, c.apiKey)

	log.Debug().
		Int("faction_id", factionID).
		Int64("from", from).
		Int64("to", to).
		Msg("Fetching attack log page")

	resp, err := c.makeAPIRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	body, err := c.handleAPIResponse(resp)
	if err != nil {
		return nil, err
	}

	var logResponse app.AttackLogResponse
	if err := json.Unmarshal(body, &logResponse); err != nil {
		return nil, fmt.Errorf("failed to decode attack log response: %w", err)
	}

	if logResponse.Error != nil {
		return nil, fmt.Errorf("API error fetching attack log: %s (code %d)",
			logResponse.Error.Message, logResponse.Error.Code)
	}

	log.Debug().
		Int("attacks_count", len(logResponse.Attacks)).
		Int("assists_count", len(logResponse.Assists)).
		Msg("Successfully fetched attack log page")

	return &logResponse, nil
}
