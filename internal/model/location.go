package model

// Employee represents one row of the employee roster
type Employee struct {
	Name string `json:"name"` // Display name for the report row
	Zip  string `json:"zip"`  // Origin zip code; not necessarily unique
}

// Facility represents one row of the facility roster
type Facility struct {
	Zip         string `json:"zip"`          // Destination zip code; unique within the set
	AirportCode string `json:"airport_code"` // Nearest airport served by the facility
}

// Distance is the outcome of one origin/destination distance lookup.
// Available is false when the service reported no route or could not
// resolve the destination, or when the whole batch degraded.
type Distance struct {
	Miles     float64 `json:"miles"`
	Available bool    `json:"available"`
}

// DistanceMap holds resolved distances keyed by origin zip, then
// destination zip. Every requested (origin, destination) pair is
// present, unavailable ones included.
type DistanceMap map[string]map[string]Distance

// Get returns the distance for an origin/destination pair. A missing
// pair reads as unavailable.
func (m DistanceMap) Get(origin, destination string) Distance {
	if byDest, ok := m[origin]; ok {
		return byDest[destination]
	}
	return Distance{}
}

// Put records a distance, creating the origin bucket on first use.
func (m DistanceMap) Put(origin, destination string, d Distance) {
	byDest, ok := m[origin]
	if !ok {
		byDest = make(map[string]Distance)
		m[origin] = byDest
	}
	byDest[destination] = d
}
