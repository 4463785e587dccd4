package ledger

import (
	"slices"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter describes a dynamic stream: the set of event types that belong to it
// and the payload predicates that scope it (typically the item's barcode).
// Event types are matched with OR; predicates are matched with OR against the
// event payload. An empty Filter matches every event in the ledger.
type Filter struct {
	eventTypes []FilterEventTypeString
	predicates []FilterPredicate
}

func (f Filter) EventTypes() []FilterEventTypeString {
	return f.eventTypes
}

func (f Filter) Predicates() []FilterPredicate {
	return f.predicates
}

func (f Filter) IsEmpty() bool {
	return len(f.eventTypes) == 0 && len(f.predicates) == 0
}

/***** FilterPredicate *****/

type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

// P is a shorthand constructor for a FilterPredicate.
func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic event filter to be used by DB type-specific
// ledger implementations to build queries in their own query language.
// It only allows the combinations that are useful for event-sourced workflows:
//
//   - empty filter (every event)
//   - (eventType OR eventType...)
//   - (predicate OR predicate...)
//   - ((eventType OR eventType...) AND (predicate OR predicate...))
type FilterBuilder interface {
	// Matching starts building the filter criteria.
	Matching() EmptyFilterBuilder

	// MatchingAnyEvent directly creates an empty Filter.
	MatchingAnyEvent() Filter
}

type EmptyFilterBuilder interface {
	// AnyEventTypeOf adds one or multiple EventTypes to the Filter.
	//
	// It sanitizes the input:
	//   - removing empty EventTypes ("")
	//   - sorting the EventTypes
	//   - removing duplicate EventTypes
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterBuilderLackingPredicates

	// AnyPredicateOf adds one or multiple FilterPredicate(s) to the Filter.
	//
	// It sanitizes the input:
	//   - removing empty/partial FilterPredicate(s) (key or val is "")
	//   - sorting the FilterPredicate(s)
	//   - removing duplicate FilterPredicate(s)
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterBuilder
}

type FilterBuilderLackingPredicates interface {
	// AndAnyPredicateOf adds one or multiple FilterPredicate(s) to the Filter.
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterBuilder

	// Finalize returns the Filter once it has at least one EventType OR one Predicate.
	Finalize() Filter
}

type CompletedFilterBuilder interface {
	// Finalize returns the Filter once it has at least one EventType OR one Predicate.
	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder.
type filterBuilder struct {
	filter Filter
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized
// with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

// Matching starts building the filter criteria.
func (fb filterBuilder) Matching() EmptyFilterBuilder {
	return fb
}

// MatchingAnyEvent directly creates an empty filter.
func (fb filterBuilder) MatchingAnyEvent() Filter {
	return fb.filter
}

// AnyEventTypeOf adds one or multiple EventTypes to the Filter expecting ANY EventType to match.
func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterBuilderLackingPredicates {

	fb.filter.eventTypes = append(fb.filter.eventTypes, sanitizeEventTypes(eventType, eventTypes...)...)

	return fb
}

// AnyPredicateOf adds one or multiple FilterPredicate(s) to the Filter expecting ANY predicate to match.
func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterBuilder {

	fb.filter.predicates = append(fb.filter.predicates, sanitizePredicates(predicate, predicates...)...)

	return fb
}

// AndAnyPredicateOf adds one or multiple FilterPredicate(s) to the Filter expecting ANY predicate to match.
func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterBuilder {

	fb.filter.predicates = append(fb.filter.predicates, sanitizePredicates(predicate, predicates...)...)

	return fb
}

// Finalize returns the Filter.
func (fb filterBuilder) Finalize() Filter {
	return fb.filter
}

func sanitizeEventTypes(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) []FilterEventTypeString {

	allEventTypes := append([]FilterEventTypeString{eventType}, eventTypes...)
	allEventTypes = slices.DeleteFunc(
		allEventTypes,
		func(e FilterEventTypeString) bool {
			return e == ""
		})
	slices.Sort(allEventTypes)
	allEventTypes = slices.Compact(allEventTypes)
	allEventTypes = slices.Clip(allEventTypes)

	return allEventTypes
}

func sanitizePredicates(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) []FilterPredicate {

	allPredicates := append([]FilterPredicate{predicate}, predicates...)
	allPredicates = slices.DeleteFunc(
		allPredicates,
		func(p FilterPredicate) bool {
			return len(p.key) == 0 || len(p.val) == 0
		})
	slices.SortFunc(
		allPredicates,
		func(a, b FilterPredicate) int {
			if a.key > b.key {
				return 1
			}

			if a.key < b.key {
				return -1
			}

			return 0
		})

	allPredicates = slices.Compact(allPredicates)
	allPredicates = slices.Clip(allPredicates)

	return allPredicates
}
