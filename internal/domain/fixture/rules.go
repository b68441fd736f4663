package fixture

// RoundComplete reports whether a fixture list represents a fully played
// matchweek: the list is non-empty, every fixture sits at the finished
// period, and the distinct teams across home and away sides cover the whole
// league. The distinct-team check guards against duplicate or partial
// fixture data even when the raw fixture count looks right.
func RoundComplete(fixtures []Summary, finishedPeriod string, leagueSize int) bool {
	if len(fixtures) == 0 || leagueSize <= 0 {
		return false
	}

	teams := make(map[string]struct{}, leagueSize)
	for _, item := range fixtures {
		if item.Period != finishedPeriod {
			return false
		}
		if item.HomeTeamID != "" {
			teams[item.HomeTeamID] = struct{}{}
		}
		if item.AwayTeamID != "" {
			teams[item.AwayTeamID] = struct{}{}
		}
	}

	return len(teams) == leagueSize
}

// DistinctTeams counts the unique team ids appearing across a fixture list.
func DistinctTeams(fixtures []Summary) int {
	teams := make(map[string]struct{}, 2*len(fixtures))
	for _, item := range fixtures {
		if item.HomeTeamID != "" {
			teams[item.HomeTeamID] = struct{}{}
		}
		if item.AwayTeamID != "" {
			teams[item.AwayTeamID] = struct{}{}
		}
	}
	return len(teams)
}
