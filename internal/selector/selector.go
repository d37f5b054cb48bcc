package selector

import (
	"fmt"
	"sort"

	"nearfac/internal/model"
)

// DefaultK is the number of closest facilities reported per employee
const DefaultK = 3

// IntegrityError reports a ranked destination with no matching
// facility, which means the two location sets disagree.
type IntegrityError struct {
	FacilityZip string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: no facility for destination zip %q", e.FacilityZip)
}

// SelectTop ranks the available distances for one origin and returns
// the k closest facilities. Unavailable destinations are skipped; ties
// on distance break on facility zip ascending so the result is
// deterministic. Fewer than k results is not an error.
func SelectTop(distances map[string]model.Distance, index map[string]model.Facility, k int) ([]model.RankedMatch, error) {
	if k <= 0 {
		k = DefaultK
	}

	type candidate struct {
		zip   string
		miles float64
	}

	candidates := make([]candidate, 0, len(distances))
	for zip, d := range distances {
		if !d.Available {
			continue
		}
		candidates = append(candidates, candidate{zip: zip, miles: d.Miles})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].miles != candidates[j].miles {
			return candidates[i].miles < candidates[j].miles
		}
		return candidates[i].zip < candidates[j].zip
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	matches := make([]model.RankedMatch, 0, len(candidates))
	for i, c := range candidates {
		facility, ok := index[c.zip]
		if !ok {
			return nil, &IntegrityError{FacilityZip: c.zip}
		}
		matches = append(matches, model.RankedMatch{
			Rank:        i + 1,
			FacilityZip: c.zip,
			Miles:       c.miles,
			AirportCode: facility.AirportCode,
		})
	}

	return matches, nil
}

// SelectAll ranks every employee against the resolved distance map.
// Rows come back in employee input order; an employee whose origin has
// no resolvable distance gets an empty match list.
func SelectAll(employees []model.Employee, dm model.DistanceMap, index map[string]model.Facility, k int) ([]model.MatchRow, error) {
	rows := make([]model.MatchRow, 0, len(employees))
	for _, emp := range employees {
		matches, err := SelectTop(dm[emp.Zip], index, k)
		if err != nil {
			return nil, err
		}
		rows = append(rows, model.MatchRow{Employee: emp, Matches: matches})
	}
	return rows, nil
}
