package pulselive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/rauljgarcia/pl-rankings-dashboard/internal/platform/logging"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/usecase"
)

const (
	defaultUserAgent = "Mozilla/5.0"
	maxResponseBytes = 6 << 20
	roundMatchLimit  = "100"
)

var errNonSuccessStatus = crerr.New("pulselive non-success status")

type ClientConfig struct {
	HTTPClient      *http.Client
	StandingsURL    string
	RoundMatchesURL string // %d matchweek placeholder
	NextFixtureURL  string // %s team id placeholder
	UserAgent       string
	Timeout         time.Duration
	Logger          *logging.Logger
}

// Client talks to the Pulselive Premier League endpoints. No retries: a
// transient failure propagates to the caller and aborts the run.
type Client struct {
	httpClient      *http.Client
	standingsURL    string
	roundMatchesURL string
	nextFixtureURL  string
	userAgent       string
	logger          *logging.Logger
	validate        *validator.Validate
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		// Copy rather than mutate an injected client.
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		clone := *httpClient
		clone.Timeout = timeout
		httpClient = &clone
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient:      httpClient,
		standingsURL:    strings.TrimSpace(cfg.StandingsURL),
		roundMatchesURL: strings.TrimSpace(cfg.RoundMatchesURL),
		nextFixtureURL:  strings.TrimSpace(cfg.NextFixtureURL),
		userAgent:       userAgent,
		logger:          logger,
		validate:        validator.New(),
	}
}

func (c *Client) FetchStandings(ctx context.Context) (usecase.ExternalStandings, error) {
	var envelope standingsEnvelope
	if err := c.doJSON(ctx, c.standingsURL, &envelope); err != nil {
		return usecase.ExternalStandings{}, fmt.Errorf("fetch standings: %w", err)
	}

	entries := envelope.Tables[0].Entries
	out := usecase.ExternalStandings{
		SeasonID:  envelope.Season.ID,
		Matchweek: envelope.Matchweek,
		Entries:   make([]usecase.ExternalStandingEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		out.Entries = append(out.Entries, usecase.ExternalStandingEntry{
			TeamID:       strconv.FormatInt(entry.Team.ID, 10),
			TeamName:     entry.Team.displayName(),
			Position:     entry.Overall.Position,
			Won:          entry.Overall.Won,
			Drawn:        entry.Overall.Drawn,
			Lost:         entry.Overall.Lost,
			GoalsFor:     entry.Overall.GoalsFor,
			GoalsAgainst: entry.Overall.GoalsAgainst,
			Points:       entry.Overall.Points,
		})
	}
	return out, nil
}

func (c *Client) FetchRoundFixtures(ctx context.Context, matchweek int) ([]usecase.ExternalFixture, error) {
	fullURL := fmt.Sprintf(c.roundMatchesURL, matchweek)
	fullURL = appendQueryParam(fullURL, "_limit", roundMatchLimit)

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, fullURL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matchweek %d matches: %w", matchweek, err)
	}

	out := make([]usecase.ExternalFixture, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, mapFixture(item))
	}
	return out, nil
}

func (c *Client) FetchNextFixture(ctx context.Context, teamID string) (usecase.ExternalFixture, error) {
	fullURL := fmt.Sprintf(c.nextFixtureURL, teamID)

	var item matchItem
	if err := c.doJSON(ctx, fullURL, &item); err != nil {
		return usecase.ExternalFixture{}, fmt.Errorf("fetch next fixture team_id=%s: %w", teamID, err)
	}
	return mapFixture(item), nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	raw, err := c.executeRequest(ctx, fullURL)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode payload: %v", usecase.ErrFormat, err)
	}
	if err := c.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: payload failed contract validation: %v", usecase.ErrFormat, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", usecase.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", usecase.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "pulselive request failed", "url", fullURL, "status", resp.StatusCode)
		statusErr := crerr.Wrapf(errNonSuccessStatus, "status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		return nil, fmt.Errorf("%w: %v", usecase.ErrTransport, statusErr)
	}

	return raw, nil
}

func mapFixture(item matchItem) usecase.ExternalFixture {
	return usecase.ExternalFixture{
		HomeTeamID:   formatTeamID(item.HomeTeam.ID),
		HomeTeamName: item.HomeTeam.displayName(),
		AwayTeamID:   formatTeamID(item.AwayTeam.ID),
		AwayTeamName: item.AwayTeam.displayName(),
		Period:       item.Period,
	}
}

func formatTeamID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func appendQueryParam(fullURL, key, value string) string {
	separator := "?"
	if strings.Contains(fullURL, "?") {
		separator = "&"
	}
	return fullURL + separator + key + "=" + value
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
