package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/penalty"
)

// Reason explains why a year was judged stale.
type Reason string

// Reason constants.
const (
	ReasonCountMismatch Reason = "count mismatch"
	ReasonNewEntry      Reason = "new entry found"
	ReasonDataChanged   Reason = "data changed"
)

// Verdict is the outcome of comparing a year's live rows with its stored records.
type Verdict struct {
	Stale  bool   `json:"stale"`
	Reason Reason `json:"reason,omitempty"`

	// Detail names the row that made the year stale, if any.
	Detail string `json:"detail,omitempty"`
}

// Compare decides whether stored must be replaced by live.
//
// The year is stale when the counts differ, when a live row has no stored
// record with the same date and name, or when the matching records all
// differ in penalty count or amount. A live row whose date cannot be
// parsed matches nothing.
func Compare(live []penalty.RawRow, stored []*penalty.Record) Verdict {
	if len(live) != len(stored) {
		return Verdict{
			Stale:  true,
			Reason: ReasonCountMismatch,
			Detail: fmt.Sprintf("%d live, %d stored", len(live), len(stored)),
		}
	}

	type key struct {
		date time.Time
		name string
	}
	byKey := make(map[key][]*penalty.Record, len(stored))
	for _, r := range stored {
		k := key{date: penalty.Date(r.Date), name: r.Name}
		byKey[k] = append(byKey[k], r)
	}

	for _, row := range live {
		name := strings.TrimSpace(row.Name)
		date, _, err := penalty.ParseDates(row.DateText)
		if err != nil {
			return Verdict{Stale: true, Reason: ReasonNewEntry, Detail: fmt.Sprintf("unparseable row %q", name)}
		}

		candidates := byKey[key{date: penalty.Date(date), name: name}]
		if len(candidates) == 0 {
			return Verdict{Stale: true, Reason: ReasonNewEntry, Detail: name}
		}

		count := int(penalty.ExtractNumber(row.PenaltyCountText))
		amount := penalty.ExtractNumber(row.AmountText)
		if !anySameData(candidates, count, amount) {
			return Verdict{Stale: true, Reason: ReasonDataChanged, Detail: name}
		}
	}
	return Verdict{}
}

func anySameData(records []*penalty.Record, count int, amount float64) bool {
	for _, r := range records {
		if r.PenaltyCount == count && r.TotalAmountUSD == amount {
			return true
		}
	}
	return false
}
