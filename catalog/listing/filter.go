package listing

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/AntonStoeckl/book-catalog-go/catalog"
)

// ComingSoon is the by-publication-year filter value that selects books published after now.
const ComingSoon = "Coming Soon"

var (
	// ErrMalformedFilterValue is returned when a by-votes or by-publication-year value is not an integer.
	ErrMalformedFilterValue = errors.New("malformed filter value")

	// ErrUnknownFilter is returned for a FilterKind outside the defined set.
	ErrUnknownFilter = errors.New("unknown filter kind")
)

// FilterKind selects the filter variant.
type FilterKind uint8

const (
	NoFilter FilterKind = iota
	FilterByVotes
	FilterByTags
	FilterByPublicationYear
)

var filterDisplayNames = [...]string{
	NoFilter:                "All",
	FilterByVotes:           "By Votes...",
	FilterByTags:            "By Categories...",
	FilterByPublicationYear: "By Year published...",
}

// FilterKinds lists every defined FilterKind.
func FilterKinds() []FilterKind {
	return []FilterKind{NoFilter, FilterByVotes, FilterByTags, FilterByPublicationYear}
}

// DisplayName returns the label a presentation layer shows for the kind.
func (k FilterKind) DisplayName() string {
	if int(k) < len(filterDisplayNames) {
		return filterDisplayNames[k]
	}

	return "Unknown"
}

// Valid tells whether k is a defined filter kind.
func (k FilterKind) Valid() bool {
	return int(k) < len(filterDisplayNames)
}

// DateBounds restricts the publication date. Zero values mean unbounded.
type DateBounds struct {
	AtOrAfter  time.Time // inclusive lower bound
	After      time.Time // exclusive lower bound
	Before     time.Time // exclusive upper bound
	AtOrBefore time.Time // inclusive upper bound
}

// Contains tells whether t is within all non-zero bounds.
func (b DateBounds) Contains(t time.Time) bool {
	switch {
	case !b.AtOrAfter.IsZero() && t.Before(b.AtOrAfter):
		return false
	case !b.After.IsZero() && !t.After(b.After):
		return false
	case !b.Before.IsZero() && !t.Before(b.Before):
		return false
	case !b.AtOrBefore.IsZero() && t.After(b.AtOrBefore):
		return false
	default:
		return true
	}
}

// Filter is a parsed filter. The zero value matches every row.
type Filter struct {
	kind           FilterKind
	votesThreshold int
	tagID          catalog.TagID
	dateBounds     DateBounds
}

// BuildFilter parses value for the given kind.
//
// NoFilter or an empty value yields the identity filter. For FilterByVotes and FilterByPublicationYear a
// non-integer value is reported as ErrMalformedFilterValue. now is the reference time for the
// publication-year variants: ComingSoon selects books published strictly after now, a year selects books
// published in that year but not after now.
func BuildFilter(kind FilterKind, value string, now time.Time) (Filter, error) {
	if !kind.Valid() {
		return Filter{}, errors.Join(ErrUnknownFilter, fmt.Errorf("filter kind %d", kind))
	}

	value = strings.TrimSpace(value)
	if kind == NoFilter || value == "" {
		return Filter{}, nil
	}

	switch kind {
	case FilterByVotes:
		threshold, err := strconv.Atoi(value)
		if err != nil {
			return Filter{}, malformed(kind, value)
		}

		return Filter{kind: kind, votesThreshold: threshold}, nil

	case FilterByTags:
		return Filter{kind: kind, tagID: value}, nil

	default: // FilterByPublicationYear
		now = catalog.ToCatalogTime(now)

		if value == ComingSoon {
			return Filter{kind: kind, dateBounds: DateBounds{After: now}}, nil
		}

		year, err := strconv.Atoi(value)
		if err != nil {
			return Filter{}, malformed(kind, value)
		}

		return Filter{
			kind: kind,
			dateBounds: DateBounds{
				AtOrAfter:  time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
				Before:     time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
				AtOrBefore: now,
			},
		}, nil
	}
}

func malformed(kind FilterKind, value string) error {
	return errors.Join(ErrMalformedFilterValue, fmt.Errorf("%s expects an integer, got %q", kind.DisplayName(), value))
}

// Kind returns the filter variant; NoFilter for the identity filter.
func (f Filter) Kind() FilterKind {
	return f.kind
}

// IsIdentity is true if the filter keeps every row.
func (f Filter) IsIdentity() bool {
	return f.kind == NoFilter
}

// VotesThreshold is the exclusive lower bound on the average rating for FilterByVotes.
func (f Filter) VotesThreshold() int {
	return f.votesThreshold
}

// TagID is the tag a row must carry for FilterByTags.
func (f Filter) TagID() catalog.TagID {
	return f.tagID
}

// DateBounds are the publication date bounds for FilterByPublicationYear.
func (f Filter) DateBounds() DateBounds {
	return f.dateBounds
}

// Matches applies the filter to one row.
func (f Filter) Matches(row BookListRow) bool {
	switch f.kind {
	case FilterByVotes:
		return row.ReviewsAverageVotes != nil && *row.ReviewsAverageVotes > float64(f.votesThreshold)
	case FilterByTags:
		return slices.Contains(row.TagIDs, f.tagID)
	case FilterByPublicationYear:
		return f.dateBounds.Contains(row.PublishedOn)
	default:
		return true
	}
}

// FilterRows returns the rows that match f, keeping their order.
func FilterRows(rows []BookListRow, f Filter) []BookListRow {
	if f.IsIdentity() {
		return slices.Clone(rows)
	}

	result := make([]BookListRow, 0, len(rows))
	for _, row := range rows {
		if f.Matches(row) {
			result = append(result, row)
		}
	}

	return result
}
