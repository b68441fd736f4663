package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rauljgarcia/pl-rankings-dashboard/internal/platform/logging"
)

const (
	defaultStandingsURL    = "https://sdp-prem-prod.premier-league-prod.pulselive.com/api/v5/competitions/8/seasons/2025/standings?live=false"
	defaultRoundMatchesURL = "https://sdp-prem-prod.premier-league-prod.pulselive.com/api/v1/competitions/8/seasons/2025/matchweeks/%d/matches"
	defaultNextFixtureURL  = "https://sdp-prem-prod.premier-league-prod.pulselive.com/api/v1/competitions/8/seasons/2025/teams/%s/nextfixture"
	defaultHistoryPath     = "pl_standings_history.csv"
	defaultUserAgent       = "Mozilla/5.0"
)

// Config stores runtime configuration for one snapshot run. Values are read
// once at startup and never mutated.
type Config struct {
	StandingsURL       string
	RoundMatchesURL    string
	NextFixtureURL     string
	HistoryPath        string
	LeagueSize         int
	FixturesPerRound   int
	FinishedPeriod     string
	UserAgent          string
	HTTPTimeout        time.Duration
	EnrichNextOpponent bool
	EnrichWorkers      int
	LogLevel           logging.Level
}

func Load() (Config, error) {
	standingsURL := strings.TrimSpace(getEnv("STANDINGS_URL", defaultStandingsURL))
	if standingsURL == "" {
		return Config{}, fmt.Errorf("STANDINGS_URL must not be empty")
	}

	roundMatchesURL := strings.TrimSpace(getEnv("ROUND_MATCHES_URL_TEMPLATE", defaultRoundMatchesURL))
	if !strings.Contains(roundMatchesURL, "%d") {
		return Config{}, fmt.Errorf("ROUND_MATCHES_URL_TEMPLATE must contain a %%d matchweek placeholder")
	}

	nextFixtureURL := strings.TrimSpace(getEnv("NEXT_FIXTURE_URL_TEMPLATE", defaultNextFixtureURL))
	if !strings.Contains(nextFixtureURL, "%s") {
		return Config{}, fmt.Errorf("NEXT_FIXTURE_URL_TEMPLATE must contain a %%s team id placeholder")
	}

	historyPath := strings.TrimSpace(getEnv("HISTORY_CSV", defaultHistoryPath))
	if historyPath == "" {
		return Config{}, fmt.Errorf("HISTORY_CSV must not be empty")
	}

	leagueSize, err := getEnvAsInt("LEAGUE_SIZE", 20)
	if err != nil {
		return Config{}, err
	}
	if leagueSize <= 0 || leagueSize%2 != 0 {
		return Config{}, fmt.Errorf("LEAGUE_SIZE must be a positive even number")
	}

	fixturesPerRound, err := getEnvAsInt("FIXTURES_PER_ROUND", leagueSize/2)
	if err != nil {
		return Config{}, err
	}
	if fixturesPerRound*2 != leagueSize {
		return Config{}, fmt.Errorf("FIXTURES_PER_ROUND must be half of LEAGUE_SIZE")
	}

	finishedPeriod := strings.TrimSpace(getEnv("FINISHED_PERIOD", "FullTime"))
	if finishedPeriod == "" {
		return Config{}, fmt.Errorf("FINISHED_PERIOD must not be empty")
	}

	httpTimeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
	}
	if httpTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}

	enrich, err := strconv.ParseBool(getEnv("ENRICH_NEXT_OPPONENT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ENRICH_NEXT_OPPONENT: %w", err)
	}

	enrichWorkers, err := getEnvAsInt("ENRICH_WORKERS", 4)
	if err != nil {
		return Config{}, err
	}
	if enrichWorkers <= 0 {
		return Config{}, fmt.Errorf("ENRICH_WORKERS must be > 0")
	}

	return Config{
		StandingsURL:       standingsURL,
		RoundMatchesURL:    roundMatchesURL,
		NextFixtureURL:     nextFixtureURL,
		HistoryPath:        historyPath,
		LeagueSize:         leagueSize,
		FixturesPerRound:   fixturesPerRound,
		FinishedPeriod:     finishedPeriod,
		UserAgent:          strings.TrimSpace(getEnv("USER_AGENT", defaultUserAgent)),
		HTTPTimeout:        httpTimeout,
		EnrichNextOpponent: enrich,
		EnrichWorkers:      enrichWorkers,
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func parseLogLevel(raw string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
