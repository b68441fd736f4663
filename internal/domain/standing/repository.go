package standing

import "context"

// History is an append-only store of snapshot rows, deduplicated by
// matchweek: a matchweek appears at most once, as a full set of team rows.
type History interface {
	Matchweeks(ctx context.Context) ([]int, error)
	Append(ctx context.Context, rows []Row) error
}
