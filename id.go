package penalty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// IDScheme selects how record IDs are derived from rows.
type IDScheme string

// IDScheme constants.
const (
	// IDSchemePositional derives "{index}-{year}" from the row's position on
	// its year page. It is unstable when the publisher reorders rows.
	IDSchemePositional IDScheme = "positional"

	// IDSchemeContent derives "c-{hash}" from the row's date, name, count
	// and amount. Identical rows within a year get "-1", "-2"... suffixes.
	IDSchemeContent IDScheme = "content"
)

// ParseIDScheme parses a scheme name. An empty name selects the positional scheme.
func ParseIDScheme(s string) (IDScheme, error) {
	switch IDScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", IDSchemePositional:
		return IDSchemePositional, nil
	case IDSchemeContent:
		return IDSchemeContent, nil
	}
	return "", Errorf(EINVALID, "unknown id scheme %q", s)
}

// PositionalID returns "{index}-{year}".
func PositionalID(index, year int) string {
	return strconv.Itoa(index) + "-" + strconv.Itoa(year)
}

// ParsePositionalID parses "{index}-{year}" or a repaired
// "{index}-{year}-{n}" ID.
func ParsePositionalID(id string) (index, year int, ok bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], true
}

// ContentID returns the content-derived ID of a parsed row.
func ContentID(row *ParsedRow) string {
	key := fmt.Sprintf("%s|%s|%d|%.2f", row.Date.Format("2006-01-02"), row.Name, row.PenaltyCount, row.TotalAmountUSD)
	return fmt.Sprintf("c-%016x", xxhash.Sum64String(key))
}

// IDAssigner assigns candidate IDs to the rows of one ingestion pass.
type IDAssigner struct {
	scheme IDScheme
	seen   map[string]int
}

// NewIDAssigner returns an assigner for scheme.
func NewIDAssigner(scheme IDScheme) *IDAssigner {
	return &IDAssigner{scheme: scheme, seen: make(map[string]int)}
}

// Assign returns the candidate ID for row.
func (a *IDAssigner) Assign(row *ParsedRow) string {
	if a.scheme != IDSchemeContent {
		return PositionalID(row.Position, row.Year)
	}
	base := ContentID(row)
	n := a.seen[base]
	a.seen[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// IDRename is a planned change of a record ID.
type IDRename struct {
	OldID string `json:"oldId"`
	NewID string `json:"newId"`
}

// PlanIDRepair returns the renames that make every positional ID carry the
// year of its record's date. Records are visited oldest first; a target
// already taken gets "-1", "-2"... appended until unique. Applying the
// renames in order never collides. Non-positional IDs are left alone.
func PlanIDRepair(records []*Record) []IDRename {
	taken := make(map[string]bool, len(records))
	for _, r := range records {
		taken[r.ID] = true
	}

	sorted := make([]*Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var renames []IDRename
	for _, r := range sorted {
		index, year, ok := ParsePositionalID(r.ID)
		if !ok || year == r.Date.Year() {
			continue
		}

		base := PositionalID(index, r.Date.Year())
		newID := base
		for n := 1; taken[newID]; n++ {
			newID = base + "-" + strconv.Itoa(n)
		}

		delete(taken, r.ID)
		taken[newID] = true
		renames = append(renames, IDRename{OldID: r.ID, NewID: newID})
	}
	return renames
}
