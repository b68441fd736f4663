package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/rauljgarcia/pl-rankings-dashboard/internal/domain/standing"
)

var header = []string{
	"snapshot_utc",
	"season_id",
	"matchweek",
	"position",
	"team_id",
	"team_name",
	"won",
	"drawn",
	"lost",
	"goalsFor",
	"goalsAgainst",
	"goal_difference",
	"points",
	"next_opponent_id",
	"next_opponent_name",
	"is_home_next",
}

// History stores snapshot rows in an append-only CSV file. The file is read
// once and appended once per run; overlapping runs are not coordinated here
// and must be serialized by the external scheduler.
type History struct {
	path string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// Matchweeks lists the distinct matchweek numbers already recorded. A
// missing file is an empty history, not an error.
func (h *History) Matchweeks(_ context.Context) ([]int, error) {
	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	seen := make(map[int]struct{}, 38)
	weeks := make([]int, 0, 38)
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(record) < 3 {
			continue
		}
		week, err := strconv.Atoi(record[2])
		if err != nil {
			continue
		}
		if _, ok := seen[week]; ok {
			continue
		}
		seen[week] = struct{}{}
		weeks = append(weeks, week)
	}

	return weeks, nil
}

// Append writes a full round's rows in a single write so a round lands
// all-or-none. The header goes in only when the file is created. An empty
// row set is a no-op and does not create the file.
func (h *History) Append(_ context.Context, rows []standing.Row) error {
	if len(rows) == 0 {
		return nil
	}

	_, statErr := os.Stat(h.path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("stat history: %w", statErr)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writer := csv.NewWriter(buf)
	if !exists {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	}
	for _, row := range rows {
		if err := writer.Write(encodeRow(row)); err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history for append: %w", err)
	}
	if _, err := f.Write(buf.B); err != nil {
		_ = f.Close()
		return fmt.Errorf("append history: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}

	return nil
}

func encodeRow(row standing.Row) []string {
	record := []string{
		row.SnapshotUTC.UTC().Format(time.RFC3339),
		strconv.FormatInt(row.SeasonID, 10),
		strconv.Itoa(row.Matchweek),
		strconv.Itoa(row.Position),
		row.TeamID,
		row.TeamName,
		strconv.Itoa(row.Won),
		strconv.Itoa(row.Drawn),
		strconv.Itoa(row.Lost),
		strconv.Itoa(row.GoalsFor),
		strconv.Itoa(row.GoalsAgainst),
		strconv.Itoa(row.GoalDifference),
		strconv.Itoa(row.Points),
	}
	if row.Next != nil {
		return append(record,
			row.Next.OpponentID,
			row.Next.OpponentName,
			strconv.FormatBool(row.Next.IsHome),
		)
	}
	return append(record, "", "", "")
}
