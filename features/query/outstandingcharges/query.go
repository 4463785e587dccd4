package outstandingcharges

const (
	queryType = "OutstandingCharges"
)

// Query represents the intent to list all charges that have been requested but
// not yet resolved, across all items.
type Query struct{}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
