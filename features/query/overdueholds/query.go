package overdueholds

import (
	"time"
)

const (
	queryType = "OverdueHolds"
)

// Query represents the intent to find all items whose hold started at or
// before the given cutoff and is still active.
type Query struct {
	HeldSinceBefore time.Time
}

// BuildQuery creates a new Query. Callers derive the cutoff from the
// configured grace period, typically now minus grace period.
func BuildQuery(heldSinceBefore time.Time) Query {
	return Query{
		HeldSinceBefore: heldSinceBefore,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
