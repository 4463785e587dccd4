package itemstate

import (
	"github.com/toolroom/loantrack/core"
)

const (
	queryType = "ItemState"
)

// Query represents the intent to query the current lifecycle state of an item.
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
