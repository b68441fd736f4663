package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/rauljgarcia/pl-rankings-dashboard/internal/domain/fixture"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/domain/standing"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/platform/logging"
)

// Outcome is the terminal state of one snapshot run. NotReady and Duplicate
// are normal control flow, not failures.
type Outcome string

const (
	OutcomeRecorded  Outcome = "recorded"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotReady  Outcome = "not_ready"
)

type RunResult struct {
	Outcome   Outcome
	Matchweek int
	Rows      int
}

type SnapshotServiceConfig struct {
	Provider         SportDataProvider
	History          standing.History
	Logger           *logging.Logger
	LeagueSize       int
	FixturesPerRound int
	FinishedPeriod   string
	EnrichOpponents  bool
	EnrichWorkers    int
	Now              func() time.Time
}

// SnapshotService runs one pass of the snapshot pipeline: fetch standings,
// gate on matchweek completion, optionally enrich with next opponents, then
// append to history unless the matchweek is already recorded.
type SnapshotService struct {
	provider         SportDataProvider
	history          standing.History
	logger           *logging.Logger
	leagueSize       int
	expectedFixtures int
	finishedPeriod   string
	enrichOpponents  bool
	enrichWorkers    int
	now              func() time.Time
}

func NewSnapshotService(cfg SnapshotServiceConfig) *SnapshotService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	leagueSize := cfg.LeagueSize
	if leagueSize <= 0 {
		leagueSize = 20
	}

	expectedFixtures := cfg.FixturesPerRound
	if expectedFixtures <= 0 {
		expectedFixtures = leagueSize / 2
	}

	finishedPeriod := cfg.FinishedPeriod
	if finishedPeriod == "" {
		finishedPeriod = fixture.PeriodFullTime
	}

	workers := cfg.EnrichWorkers
	if workers <= 0 {
		workers = 4
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &SnapshotService{
		provider:         cfg.Provider,
		history:          cfg.History,
		logger:           logger,
		leagueSize:       leagueSize,
		expectedFixtures: expectedFixtures,
		finishedPeriod:   finishedPeriod,
		enrichOpponents:  cfg.EnrichOpponents,
		enrichWorkers:    workers,
		now:              now,
	}
}

func (s *SnapshotService) Run(ctx context.Context) (RunResult, error) {
	table, err := s.provider.FetchStandings(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("fetch standings: %w", err)
	}
	if err := s.validateTable(table); err != nil {
		return RunResult{}, err
	}

	complete, err := s.roundComplete(ctx, table.Matchweek)
	if err != nil {
		return RunResult{}, err
	}
	if !complete {
		return RunResult{Outcome: OutcomeNotReady, Matchweek: table.Matchweek}, nil
	}

	rows := s.buildRows(table)

	if s.enrichOpponents {
		if err := s.enrich(ctx, rows); err != nil {
			return RunResult{}, err
		}
	}

	recorded, err := s.history.Matchweeks(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("read history: %w", err)
	}
	for _, week := range recorded {
		if week == table.Matchweek {
			return RunResult{Outcome: OutcomeDuplicate, Matchweek: table.Matchweek}, nil
		}
	}

	if err := s.history.Append(ctx, rows); err != nil {
		return RunResult{}, fmt.Errorf("append history: %w", err)
	}

	return RunResult{Outcome: OutcomeRecorded, Matchweek: table.Matchweek, Rows: len(rows)}, nil
}

// validateTable enforces the upstream table contract: exactly one entry per
// league team, with positions covering 1..leagueSize without gaps. A
// violation means the provider schema changed and must not silently produce
// partial data.
func (s *SnapshotService) validateTable(table ExternalStandings) error {
	if len(table.Entries) != s.leagueSize {
		return fmt.Errorf("%w: expected %d standings entries, got %d", ErrFormat, s.leagueSize, len(table.Entries))
	}

	positions := make([]int, 0, len(table.Entries))
	for _, entry := range table.Entries {
		positions = append(positions, entry.Position)
	}
	sort.Ints(positions)
	for i, position := range positions {
		if position != i+1 {
			return fmt.Errorf("%w: positions are not exactly 1..%d", ErrFormat, s.leagueSize)
		}
	}

	return nil
}

func (s *SnapshotService) roundComplete(ctx context.Context, matchweek int) (bool, error) {
	items, err := s.provider.FetchRoundFixtures(ctx, matchweek)
	if err != nil {
		return false, fmt.Errorf("fetch matchweek %d fixtures: %w", matchweek, err)
	}

	fixtures := make([]fixture.Summary, 0, len(items))
	periods := make(map[string]struct{}, 2)
	for _, item := range items {
		fixtures = append(fixtures, fixture.Summary{
			HomeTeamID: item.HomeTeamID,
			AwayTeamID: item.AwayTeamID,
			Period:     item.Period,
		})
		periods[item.Period] = struct{}{}
	}

	periodSet := make([]string, 0, len(periods))
	for period := range periods {
		periodSet = append(periodSet, period)
	}
	sort.Strings(periodSet)
	s.logger.DebugContext(ctx, "matchweek completion check",
		"matchweek", matchweek,
		"fixtures", len(fixtures),
		"expected_fixtures", s.expectedFixtures,
		"periods", periodSet,
		"distinct_teams", fixture.DistinctTeams(fixtures),
	)

	complete := fixture.RoundComplete(fixtures, s.finishedPeriod, s.leagueSize)
	if complete && len(fixtures) != s.expectedFixtures {
		// Completion gates on distinct teams, so an off count here means
		// duplicate or rescheduled fixture rows upstream.
		s.logger.WarnContext(ctx, "matchweek complete with unexpected fixture count",
			"matchweek", matchweek,
			"fixtures", len(fixtures),
			"expected_fixtures", s.expectedFixtures,
		)
	}
	return complete, nil
}

func (s *SnapshotService) buildRows(table ExternalStandings) []standing.Row {
	snapshot := s.now().UTC().Truncate(time.Second)

	rows := make([]standing.Row, 0, len(table.Entries))
	for _, entry := range table.Entries {
		rows = append(rows, standing.Row{
			SnapshotUTC: snapshot,
			SeasonID:    table.SeasonID,
			Matchweek:   table.Matchweek,
			Entry: standing.Entry{
				TeamID:         entry.TeamID,
				TeamName:       entry.TeamName,
				Position:       entry.Position,
				Won:            entry.Won,
				Drawn:          entry.Drawn,
				Lost:           entry.Lost,
				GoalsFor:       entry.GoalsFor,
				GoalsAgainst:   entry.GoalsAgainst,
				GoalDifference: entry.GoalsFor - entry.GoalsAgainst,
				Points:         entry.Points,
			},
		})
	}
	return rows
}

// enrich fans the per-team next-fixture lookups out over a bounded worker
// pool and reassembles results in table order. Any lookup failure aborts the
// whole run; rows are never appended half-enriched.
func (s *SnapshotService) enrich(ctx context.Context, rows []standing.Row) error {
	pool, err := ants.NewPool(s.enrichWorkers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]*standing.NextOpponent, len(rows))
	errs := make([]error, len(rows))

	var workers sync.WaitGroup
	for i := range rows {
		i := i
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i], errs[i] = s.nextOpponent(ctx, rows[i].TeamID)
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	for i := range rows {
		if errs[i] != nil {
			return fmt.Errorf("enrich team_id=%s: %w", rows[i].TeamID, errs[i])
		}
		rows[i].Next = results[i]
	}
	return nil
}

func (s *SnapshotService) nextOpponent(ctx context.Context, teamID string) (*standing.NextOpponent, error) {
	item, err := s.provider.FetchNextFixture(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fetch next fixture: %w", err)
	}

	switch teamID {
	case item.HomeTeamID:
		return &standing.NextOpponent{
			OpponentID:   item.AwayTeamID,
			OpponentName: item.AwayTeamName,
			IsHome:       true,
		}, nil
	case item.AwayTeamID:
		return &standing.NextOpponent{
			OpponentID:   item.HomeTeamID,
			OpponentName: item.HomeTeamName,
			IsHome:       false,
		}, nil
	default:
		return nil, fmt.Errorf("%w: team %s not found in its next fixture", ErrFormat, teamID)
	}
}
