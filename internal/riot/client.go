package riot

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

	"go.uber.org/zap"
)

const (
	defaultPlatformHost  = "https://na1.api.riotgames.com"
	defaultRegionHost    = "https://americas.api.riotgames.com"
	defaultDataDragonURL = "https://ddragon.leagueoflegends.com/cdn/12.19.1/data/en_US/champion.json"

	// matchWindow is how many recent match ids a history lookup returns.
	matchWindow = 100
)

// Config controls client endpoints, pacing, and retry bounds. The request
// delay is a policy knob because credential-level quotas vary.
type Config struct {
	PlatformHost  string
	RegionHost    string
	DataDragonURL string
	RequestDelay  time.Duration
	RetryCount    int
	RetryWait     time.Duration
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.PlatformHost == "" {
		c.PlatformHost = defaultPlatformHost
	}
	if c.RegionHost == "" {
		c.RegionHost = defaultRegionHost
	}
	if c.DataDragonURL == "" {
		c.DataDragonURL = defaultDataDragonURL
	}
	if c.RequestDelay <= 0 {
		// 100 requests per 2 minutes.
		c.RequestDelay = 1200 * time.Millisecond
	}
	if c.RetryCount <= 0 {
		c.RetryCount = 5
	}
	if c.RetryWait <= 0 {
		c.RetryWait = 5 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// Client is a synchronous, rate-paced wrapper over the Riot API. Each client
// owns exactly one credential; a worker never shares its client.
type Client struct {
	cfg        Config
	credential string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client for one credential.
func NewClient(cfg Config, credential string, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		credential: credential,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// AccountByRiotID resolves a display name to a stable PUUID (account-v1).
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.cfg.RegionHost, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	if err := c.getJSON(ctx, "account", u, &account); err != nil {
		return Account{}, err
	}
	if account.PUUID == "" {
		return Account{}, c.malformed("account", "missing puuid")
	}
	return account, nil
}

// MatchIDsByPUUID lists a player's most recent match ids (match-v5).
func (c *Client) MatchIDsByPUUID(ctx context.Context, puuid string) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		c.cfg.RegionHost, url.PathEscape(puuid), matchWindow)

	var ids []string
	if err := c.getJSON(ctx, "match_ids", u, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchByID fetches full match detail (match-v5).
func (c *Client) MatchByID(ctx context.Context, matchID string) (Match, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.cfg.RegionHost, url.PathEscape(matchID))

	var match Match
	if err := c.getJSON(ctx, "match", u, &match); err != nil {
		return Match{}, err
	}
	if match.Metadata.MatchID == "" || match.Info.GameVersion == "" {
		return Match{}, c.malformed("match", "missing matchId or gameVersion")
	}
	if len(match.Info.Teams) == 0 {
		return Match{}, c.malformed("match", "missing teams")
	}
	return match, nil
}

// MasteryByPUUID fetches all champion mastery entries for a player
// (champion-mastery-v4).
func (c *Client) MasteryByPUUID(ctx context.Context, puuid string) ([]MasteryRecord, error) {
	u := fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s",
		c.cfg.PlatformHost, url.PathEscape(puuid))

	var records []MasteryRecord
	if err := c.getJSON(ctx, "mastery", u, &records); err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].PUUID == "" {
			records[i].PUUID = puuid
		}
	}
	return records, nil
}

// championPayload mirrors the Data Dragon champion.json shape.
type championPayload struct {
	Data map[string]struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Info struct {
			Attack     int `json:"attack"`
			Defense    int `json:"defense"`
			Magic      int `json:"magic"`
			Difficulty int `json:"difficulty"`
		} `json:"info"`
		Tags []string `json:"tags"`
	} `json:"data"`
}

// ChampionData fetches the static champion roster from Data Dragon. Unlike the
// API endpoints it is unauthenticated and not rate-budgeted.
func (c *Client) ChampionData(ctx context.Context) ([]Champion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.DataDragonURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build ddragon request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransient, Endpoint: "ddragon", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Kind: KindTransient, StatusCode: resp.StatusCode, Endpoint: "ddragon"}
	}

	var payload championPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.malformed("ddragon", err.Error())
	}

	champs := make([]Champion, 0, len(payload.Data))
	for _, data := range payload.Data {
		key, err := strconv.Atoi(data.Key)
		if err != nil {
			return nil, c.malformed("ddragon", fmt.Sprintf("champion key %q is not numeric", data.Key))
		}
		champs = append(champs, Champion{
			ChampionID: key,
			Name:       data.ID,
			Tags:       strings.Join(data.Tags, ","),
			Attack:     data.Info.Attack,
			Defense:    data.Info.Defense,
			Magic:      data.Info.Magic,
			Difficulty: data.Info.Difficulty,
		})
	}
	return champs, nil
}

// getJSON performs one paced, retry-bounded GET and decodes the body into out.
// Every round trip is followed by the fixed request delay so the credential
// stays under its rate budget regardless of outcome.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	attempts := 0
	for {
		attempts++
		status, body, err := c.roundTrip(ctx, rawURL)
		if err != nil {
			return &APIError{Kind: KindTransient, Endpoint: endpoint, Attempts: attempts, Err: err}
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return &APIError{Kind: KindMalformed, StatusCode: status, Endpoint: endpoint, Attempts: attempts, Err: err}
			}
			return nil
		case status == http.StatusForbidden:
			return &APIError{Kind: KindForbidden, StatusCode: status, Endpoint: endpoint, Attempts: attempts}
		case status == http.StatusNotFound:
			return &APIError{Kind: KindNotFound, StatusCode: status, Endpoint: endpoint, Attempts: attempts}
		case isRetryable(status):
			if attempts > c.cfg.RetryCount {
				return &APIError{Kind: KindTransient, StatusCode: status, Endpoint: endpoint, Attempts: attempts}
			}
			c.logger.Warn("retryable status, backing off",
				zap.String("endpoint", endpoint),
				zap.Int("status", status),
				zap.Int("attempt", attempts),
			)
			if err := pause(ctx, c.cfg.RetryWait); err != nil {
				return &APIError{Kind: KindTransient, StatusCode: status, Endpoint: endpoint, Attempts: attempts, Err: err}
			}
		default:
			return &APIError{Kind: KindTransient, StatusCode: status, Endpoint: endpoint, Attempts: attempts}
		}
	}
}

func (c *Client) roundTrip(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Pace even failed calls; a connection fault still consumed time on
		// the wire and the quota window does not care why.
		_ = pause(ctx, c.cfg.RequestDelay)
		return 0, nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if err := pause(ctx, c.cfg.RequestDelay); err != nil {
		return 0, nil, err
	}
	if readErr != nil {
		return 0, nil, fmt.Errorf("read body: %w", readErr)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) malformed(endpoint, detail string) error {
	return &APIError{
		Kind:     KindMalformed,
		Endpoint: endpoint,
		Err:      fmt.Errorf("%s", detail),
	}
}

func isRetryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

// pause sleeps for delay unless the context ends first.
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
