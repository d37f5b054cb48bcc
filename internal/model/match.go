package model

// RankedMatch is one of the closest facilities selected for an
// employee, ordered by rank starting at 1.
type RankedMatch struct {
	Rank        int     `json:"rank"` // 1-based position in the ranking
	FacilityZip string  `json:"facility_zip"`
	Miles       float64 `json:"miles"`
	AirportCode string  `json:"airport_code"`
}

// MatchRow pairs an employee with its ranked matches. Matches may hold
// fewer entries than the requested k when distances were unavailable;
// an employee with no resolvable distance has an empty slice.
type MatchRow struct {
	Employee Employee      `json:"employee"`
	Matches  []RankedMatch `json:"matches"`
}
