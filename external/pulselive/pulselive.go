package pulselive

// Envelope types for the Pulselive Premier League API. Validation tags carry
// the minimum contract the snapshot run depends on; a missing or malformed
// field fails at decode time instead of surfacing later as a zero value.

type standingsEnvelope struct {
	Season    seasonRef      `json:"season" validate:"required"`
	Matchweek int            `json:"matchweek" validate:"required,gt=0"`
	Tables    []tableSection `json:"tables" validate:"required,min=1,dive"`
}

type seasonRef struct {
	ID int64 `json:"id" validate:"required"`
}

type tableSection struct {
	Entries []tableEntry `json:"entries" validate:"required,min=1,dive"`
}

type tableEntry struct {
	Team    teamRef       `json:"team" validate:"required"`
	Overall overallRecord `json:"overall" validate:"required"`
}

type teamRef struct {
	ID        int64  `json:"id" validate:"required"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type overallRecord struct {
	Position     int `json:"position" validate:"gt=0"`
	Won          int `json:"won" validate:"gte=0"`
	Drawn        int `json:"drawn" validate:"gte=0"`
	Lost         int `json:"lost" validate:"gte=0"`
	GoalsFor     int `json:"goalsFor" validate:"gte=0"`
	GoalsAgainst int `json:"goalsAgainst" validate:"gte=0"`
	Points       int `json:"points" validate:"gte=0"`
}

type matchesEnvelope struct {
	Data []matchItem `json:"data"`
}

// matchItem doubles as the round-matches array element and the nextfixture
// top-level object. The completion rule tolerates sparse rows, so only the
// fields it reads are mapped.
type matchItem struct {
	Period   string  `json:"period"`
	HomeTeam teamRef `json:"homeTeam"`
	AwayTeam teamRef `json:"awayTeam"`
}

func (t teamRef) displayName() string {
	if t.ShortName != "" {
		return t.ShortName
	}
	return t.Name
}
