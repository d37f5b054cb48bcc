package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"nearfac/internal/model"
)

// Required column headers, matched exactly after trimming
const (
	ColEmployeeName = "Name"
	ColEmployeeZip  = "Employee Zip"
	ColFacilityZip  = "Facility Zip"
	ColAirportCode  = "Airport Code"
)

// SchemaError reports malformed input records. It is fatal and raised
// before any distance query is issued.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return "schema: " + e.Detail
}

// FacilitySet is the normalized facility roster. Zips are unique; the
// load fails rather than silently picking one of two duplicates.
type FacilitySet struct {
	facilities []model.Facility
	index      map[string]model.Facility
}

// Zips returns destination zip codes in file order
func (s *FacilitySet) Zips() []string {
	zips := make([]string, len(s.facilities))
	for i, f := range s.facilities {
		zips[i] = f.Zip
	}
	return zips
}

// Index returns the destination zip to facility lookup
func (s *FacilitySet) Index() map[string]model.Facility {
	return s.index
}

// Len returns the number of facilities
func (s *FacilitySet) Len() int {
	return len(s.facilities)
}

// LoadEmployees reads the employee roster from a CSV file
func LoadEmployees(path string) ([]model.Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open employees: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseEmployees(f)
}

// ParseEmployees reads employee records from CSV data. Zip values are
// trimmed but otherwise passed through; a malformed zip surfaces later
// as an unavailable distance, not a load error.
func ParseEmployees(r io.Reader) ([]model.Employee, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	nameCol, ok := header[ColEmployeeName]
	if !ok {
		return nil, &SchemaError{Detail: fmt.Sprintf("missing column %q", ColEmployeeName)}
	}
	zipCol, ok := header[ColEmployeeZip]
	if !ok {
		return nil, &SchemaError{Detail: fmt.Sprintf("missing column %q", ColEmployeeZip)}
	}

	var employees []model.Employee
	for _, row := range rows {
		name := field(row, nameCol)
		zip := field(row, zipCol)
		if zip == "" {
			continue
		}
		employees = append(employees, model.Employee{Name: name, Zip: zip})
	}
	return employees, nil
}

// LoadFacilities reads the facility roster from a CSV file
func LoadFacilities(path string) (*FacilitySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open facilities: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseFacilities(f)
}

// ParseFacilities reads facility records from CSV data. A duplicated
// facility zip is a SchemaError.
func ParseFacilities(r io.Reader) (*FacilitySet, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	zipCol, ok := header[ColFacilityZip]
	if !ok {
		return nil, &SchemaError{Detail: fmt.Sprintf("missing column %q", ColFacilityZip)}
	}
	codeCol, ok := header[ColAirportCode]
	if !ok {
		return nil, &SchemaError{Detail: fmt.Sprintf("missing column %q", ColAirportCode)}
	}

	set := &FacilitySet{index: make(map[string]model.Facility)}
	for _, row := range rows {
		zip := field(row, zipCol)
		if zip == "" {
			continue
		}
		if _, exists := set.index[zip]; exists {
			return nil, &SchemaError{Detail: fmt.Sprintf("duplicate facility zip %q", zip)}
		}
		facility := model.Facility{Zip: zip, AirportCode: field(row, codeCol)}
		set.facilities = append(set.facilities, facility)
		set.index[zip] = facility
	}
	return set, nil
}

// UniqueOrigins deduplicates employee zips preserving first-seen
// order, so each shared origin is resolved once
func UniqueOrigins(employees []model.Employee) []string {
	seen := make(map[string]bool)
	var origins []string
	for _, emp := range employees {
		if emp.Zip == "" || seen[emp.Zip] {
			continue
		}
		seen[emp.Zip] = true
		origins = append(origins, emp.Zip)
	}
	return origins
}

// readCSV returns data rows plus a header-name to column-index map
func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, &SchemaError{Detail: "empty input, header row required"}
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	return records[1:], header, nil
}

func field(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
