package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rauljgarcia/pl-rankings-dashboard/internal/domain/standing"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/platform/logging"
)

func makeTable(size, matchweek int) ExternalStandings {
	table := ExternalStandings{
		SeasonID:  2025,
		Matchweek: matchweek,
		Entries:   make([]ExternalStandingEntry, 0, size),
	}
	for i := 1; i <= size; i++ {
		table.Entries = append(table.Entries, ExternalStandingEntry{
			TeamID:       fmt.Sprintf("t%d", i),
			TeamName:     fmt.Sprintf("Team %d", i),
			Position:     i,
			Won:          size - i,
			Drawn:        1,
			Lost:         i - 1,
			GoalsFor:     30 - i,
			GoalsAgainst: 10 + i,
			Points:       3*(size-i) + 1,
		})
	}
	return table
}

func makeFinishedFixtures(size int) []ExternalFixture {
	out := make([]ExternalFixture, 0, size/2)
	for i := 1; i <= size; i += 2 {
		out = append(out, ExternalFixture{
			HomeTeamID:   fmt.Sprintf("t%d", i),
			HomeTeamName: fmt.Sprintf("Team %d", i),
			AwayTeamID:   fmt.Sprintf("t%d", i+1),
			AwayTeamName: fmt.Sprintf("Team %d", i+1),
			Period:       "FullTime",
		})
	}
	return out
}

// makeNextFixtures pairs each team with the following team, alternating the
// subject between home and away.
func makeNextFixtures(size int) map[string]ExternalFixture {
	out := make(map[string]ExternalFixture, size)
	for i := 1; i <= size; i++ {
		opponent := i%size + 1
		item := ExternalFixture{
			HomeTeamID:   fmt.Sprintf("t%d", i),
			HomeTeamName: fmt.Sprintf("Team %d", i),
			AwayTeamID:   fmt.Sprintf("t%d", opponent),
			AwayTeamName: fmt.Sprintf("Team %d", opponent),
		}
		if i%2 == 0 {
			item.HomeTeamID, item.AwayTeamID = item.AwayTeamID, item.HomeTeamID
			item.HomeTeamName, item.AwayTeamName = item.AwayTeamName, item.HomeTeamName
		}
		out[fmt.Sprintf("t%d", i)] = item
	}
	return out
}

type stubProvider struct {
	standings     ExternalStandings
	standingsErr  error
	fixtures      map[int][]ExternalFixture
	fixturesErr   error
	nextFixtures  map[string]ExternalFixture
	nextErrByTeam map[string]error
}

func (s *stubProvider) FetchStandings(_ context.Context) (ExternalStandings, error) {
	return s.standings, s.standingsErr
}

func (s *stubProvider) FetchRoundFixtures(_ context.Context, matchweek int) ([]ExternalFixture, error) {
	if s.fixturesErr != nil {
		return nil, s.fixturesErr
	}
	return s.fixtures[matchweek], nil
}

func (s *stubProvider) FetchNextFixture(_ context.Context, teamID string) (ExternalFixture, error) {
	if err := s.nextErrByTeam[teamID]; err != nil {
		return ExternalFixture{}, err
	}
	item, ok := s.nextFixtures[teamID]
	if !ok {
		return ExternalFixture{}, fmt.Errorf("%w: no next fixture for %s", ErrFormat, teamID)
	}
	return item, nil
}

type stubHistory struct {
	weeks     []int
	appended  [][]standing.Row
	weeksErr  error
	appendErr error
}

func (s *stubHistory) Matchweeks(_ context.Context) ([]int, error) {
	return s.weeks, s.weeksErr
}

func (s *stubHistory) Append(_ context.Context, rows []standing.Row) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	out := make([]standing.Row, len(rows))
	copy(out, rows)
	s.appended = append(s.appended, out)
	return nil
}

func newService(provider *stubProvider, history *stubHistory, enrich bool) *SnapshotService {
	return NewSnapshotService(SnapshotServiceConfig{
		Provider:        provider,
		History:         history,
		LeagueSize:      20,
		FinishedPeriod:  "FullTime",
		EnrichOpponents: enrich,
		EnrichWorkers:   4,
		Now: func() time.Time {
			return time.Date(2026, 8, 25, 12, 30, 45, 123456789, time.UTC)
		},
	})
}

func TestSnapshotService_Run_WarnsOnUnexpectedFixtureCount(t *testing.T) {
	t.Parallel()

	// 11 fixtures, one a duplicate pairing: still 20 distinct teams, so the
	// round completes, but the count deviation must be surfaced.
	fixtures := makeFinishedFixtures(20)
	fixtures = append(fixtures, fixtures[0])
	provider := &stubProvider{
		standings: makeTable(20, 10),
		fixtures:  map[int][]ExternalFixture{10: fixtures},
	}
	history := &stubHistory{}

	core, logs := observer.New(zapcore.WarnLevel)
	service := NewSnapshotService(SnapshotServiceConfig{
		Provider:         provider,
		History:          history,
		Logger:           logging.FromZap(zap.New(core)),
		LeagueSize:       20,
		FixturesPerRound: 10,
		FinishedPeriod:   "FullTime",
	})

	got, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Outcome != OutcomeRecorded {
		t.Fatalf("expected recorded outcome, got %+v", got)
	}

	entries := logs.FilterMessage("matchweek complete with unexpected fixture count").All()
	if len(entries) != 1 {
		t.Fatalf("expected one fixture-count warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["fixtures"] != int64(11) || fields["expected_fixtures"] != int64(10) {
		t.Fatalf("unexpected warning fields: %v", fields)
	}
}

func TestSnapshotService_Run_RecordsCompletedMatchweek(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		standings:    makeTable(20, 10),
		fixtures:     map[int][]ExternalFixture{10: makeFinishedFixtures(20)},
		nextFixtures: makeNextFixtures(20),
	}
	history := &stubHistory{}

	got, err := newService(provider, history, true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Outcome != OutcomeRecorded {
		t.Fatalf("expected outcome %q, got %q", OutcomeRecorded, got.Outcome)
	}
	if got.Matchweek != 10 || got.Rows != 20 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(history.appended) != 1 || len(history.appended[0]) != 20 {
		t.Fatalf("expected one appended set of 20 rows, got %+v", history.appended)
	}

	first := history.appended[0][0]
	if first.SeasonID != 2025 || first.Matchweek != 10 {
		t.Fatalf("unexpected row annotation: %+v", first)
	}
	if first.SnapshotUTC != time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC) {
		t.Fatalf("expected second-truncated UTC snapshot time, got %v", first.SnapshotUTC)
	}
	if first.GoalDifference != first.GoalsFor-first.GoalsAgainst {
		t.Fatalf("goal difference not derived: %+v", first)
	}
	if first.Next == nil || first.Next.OpponentID != "t2" || !first.Next.IsHome {
		t.Fatalf("unexpected enrichment for t1: %+v", first.Next)
	}

	second := history.appended[0][1]
	if second.Next == nil || second.Next.OpponentID != "t3" || second.Next.IsHome {
		t.Fatalf("expected t2 to be the away side next, got %+v", second.Next)
	}
}

func TestSnapshotService_Run_NotReadyWhenFixtureInProgress(t *testing.T) {
	t.Parallel()

	fixtures := makeFinishedFixtures(20)
	fixtures[9].Period = "InProgress"
	provider := &stubProvider{
		standings: makeTable(20, 10),
		fixtures:  map[int][]ExternalFixture{10: fixtures},
	}
	history := &stubHistory{}

	got, err := newService(provider, history, true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Outcome != OutcomeNotReady || got.Matchweek != 10 {
		t.Fatalf("expected not-ready for matchweek 10, got %+v", got)
	}
	if len(history.appended) != 0 {
		t.Fatal("expected no append for an incomplete matchweek")
	}
}

func TestSnapshotService_Run_SkipsAlreadyRecordedMatchweek(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		standings:    makeTable(20, 9),
		fixtures:     map[int][]ExternalFixture{9: makeFinishedFixtures(20)},
		nextFixtures: makeNextFixtures(20),
	}
	history := &stubHistory{weeks: []int{7, 8, 9}}

	got, err := newService(provider, history, true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Outcome != OutcomeDuplicate || got.Matchweek != 9 {
		t.Fatalf("expected duplicate outcome for matchweek 9, got %+v", got)
	}
	if len(history.appended) != 0 {
		t.Fatal("expected duplicate matchweek to skip the append")
	}
}

func TestSnapshotService_Run_WrongEntryCountIsFormatError(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{standings: makeTable(19, 10)}

	_, err := newService(provider, &stubHistory{}, false).Run(context.Background())
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for 19 entries, got %v", err)
	}
}

func TestSnapshotService_Run_NonContiguousPositionsIsFormatError(t *testing.T) {
	t.Parallel()

	table := makeTable(20, 10)
	table.Entries[4].Position = 21
	provider := &stubProvider{standings: table}

	_, err := newService(provider, &stubHistory{}, false).Run(context.Background())
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for non-contiguous positions, got %v", err)
	}
}

func TestSnapshotService_Run_OpponentMismatchIsFormatError(t *testing.T) {
	t.Parallel()

	next := makeNextFixtures(20)
	// t5's fixture no longer references t5 at all.
	next["t5"] = ExternalFixture{
		HomeTeamID: "t6", HomeTeamName: "Team 6",
		AwayTeamID: "t7", AwayTeamName: "Team 7",
	}
	provider := &stubProvider{
		standings:    makeTable(20, 10),
		fixtures:     map[int][]ExternalFixture{10: makeFinishedFixtures(20)},
		nextFixtures: next,
	}
	history := &stubHistory{}

	_, err := newService(provider, history, true).Run(context.Background())
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for opponent mismatch, got %v", err)
	}
	if len(history.appended) != 0 {
		t.Fatal("expected no append when enrichment fails")
	}
}

func TestSnapshotService_Run_EnrichmentDisabledLeavesRowsBare(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		standings: makeTable(20, 10),
		fixtures:  map[int][]ExternalFixture{10: makeFinishedFixtures(20)},
	}
	history := &stubHistory{}

	got, err := newService(provider, history, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.Outcome != OutcomeRecorded {
		t.Fatalf("expected recorded outcome, got %+v", got)
	}
	for _, row := range history.appended[0] {
		if row.Next != nil {
			t.Fatalf("expected no enrichment on row %+v", row)
		}
	}
}

func TestSnapshotService_Run_TransportErrorAbortsRun(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		standings:   makeTable(20, 10),
		fixturesErr: fmt.Errorf("%w: status=503", ErrTransport),
	}

	_, err := newService(provider, &stubHistory{}, false).Run(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport to propagate, got %v", err)
	}
}
