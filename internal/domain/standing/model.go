package standing

import "time"

// Entry is one team's cumulative league record at capture time. Produced
// fresh from each poll and never mutated.
type Entry struct {
	TeamID         string
	TeamName       string
	Position       int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

// NextOpponent is the optional enrichment attached to a snapshot row:
// who the team plays next and whether it plays at home.
type NextOpponent struct {
	OpponentID   string
	OpponentName string
	IsHome       bool
}

// Row is the persisted unit: one Entry annotated with snapshot metadata.
// Immutable once written to history.
type Row struct {
	SnapshotUTC time.Time
	SeasonID    int64
	Matchweek   int
	Entry
	Next *NextOpponent
}
