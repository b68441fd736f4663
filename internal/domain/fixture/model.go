package fixture

// PeriodFullTime marks a fixture that has concluded normally.
const PeriodFullTime = "FullTime"

// Summary is a single fixture within a round, reduced to what the
// completion rule needs. Not persisted.
type Summary struct {
	HomeTeamID string
	AwayTeamID string
	Period     string
}
