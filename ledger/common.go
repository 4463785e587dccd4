package ledger

import (
	"errors"
)

var ErrEmptyEventsTableName = errors.New("empty events table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrConcurrencyConflict = errors.New("concurrency conflict, no rows were affected")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingEventsFailed = errors.New("querying events failed")
var ErrAppendingEventFailed = errors.New("appending event failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrBuildingStorableEventFailed = errors.New("building storable event from database row failed")

// MaxSequenceNumberUint is a type alias for uint, representing the maximum
// sequence number observed for a dynamic stream at query time.
type MaxSequenceNumberUint = uint
