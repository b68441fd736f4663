package usecase

import "context"

// ExternalStandings is the provider-neutral shape of one standings poll.
type ExternalStandings struct {
	SeasonID  int64
	Matchweek int
	Entries   []ExternalStandingEntry
}

type ExternalStandingEntry struct {
	TeamID       string
	TeamName     string
	Position     int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// ExternalFixture is one fixture as reported by the provider. Team names are
// already resolved to display form.
type ExternalFixture struct {
	HomeTeamID   string
	HomeTeamName string
	AwayTeamID   string
	AwayTeamName string
	Period       string
}

// SportDataProvider is the outbound API surface a snapshot run depends on.
type SportDataProvider interface {
	FetchStandings(ctx context.Context) (ExternalStandings, error)
	FetchRoundFixtures(ctx context.Context, matchweek int) ([]ExternalFixture, error)
	FetchNextFixture(ctx context.Context, teamID string) (ExternalFixture, error)
}
