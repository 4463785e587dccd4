package loanhistory

import (
	"github.com/toolroom/loantrack/core"
)

const (
	queryType = "LoanHistory"
)

// Query represents the intent to query the full loan history of an item.
type Query struct {
	Barcode core.BarcodeString
}

// BuildQuery creates a new Query with the provided barcode.
func BuildQuery(barcode core.BarcodeString) Query {
	return Query{
		Barcode: barcode,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
