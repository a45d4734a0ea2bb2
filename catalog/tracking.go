package catalog

// Field is one mutable, persisted column of a Book.
type Field uint16

const (
	FieldPublishedOn Field = 1 << iota
	FieldActualPrice
	FieldPromotionalText
	FieldSoftDeleted
	FieldAuthorsOrdered
	FieldReviewsCount
	FieldReviewsAverageVotes
)

var fieldNames = map[Field]string{
	FieldPublishedOn:         "PublishedOn",
	FieldActualPrice:         "ActualPrice",
	FieldPromotionalText:     "PromotionalText",
	FieldSoftDeleted:         "SoftDeleted",
	FieldAuthorsOrdered:      "AuthorsOrdered",
	FieldReviewsCount:        "ReviewsCount",
	FieldReviewsAverageVotes: "ReviewsAverageVotes",
}

var allFields = []Field{
	FieldPublishedOn,
	FieldActualPrice,
	FieldPromotionalText,
	FieldSoftDeleted,
	FieldAuthorsOrdered,
	FieldReviewsCount,
	FieldReviewsAverageVotes,
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return "Unknown"
}

// FieldSet is a set of dirty fields.
type FieldSet uint16

// reviewStatsGroup are the cached fields a stat handler derives from each other. They are written
// and version-checked together, so a stale count can never be combined with a fresh average.
const reviewStatsGroup = FieldSet(FieldReviewsCount) | FieldSet(FieldReviewsAverageVotes)

// withGuardGroups widens a partially dirty review stats group to the whole group.
func (s FieldSet) withGuardGroups() FieldSet {
	if s&reviewStatsGroup != 0 {
		return s | reviewStatsGroup
	}

	return s
}

// With returns the set with f added.
func (s FieldSet) With(f Field) FieldSet {
	return s | FieldSet(f)
}

// Has tells whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) != 0
}

// Empty is true if no field is dirty.
func (s FieldSet) Empty() bool {
	return s == 0
}

// Fields lists the contained fields in declaration order.
func (s FieldSet) Fields() []Field {
	var fields []Field
	for _, f := range allFields {
		if s.Has(f) {
			fields = append(fields, f)
		}
	}

	return fields
}

// ConcurrencyTokens holds one version per cached field. A store only writes a cached field
// if its token still has the value that was read, and increments it on each write.
type ConcurrencyTokens struct {
	AuthorsOrdered      uint64
	ReviewsCount        uint64
	ReviewsAverageVotes uint64
}

// Next returns the tokens after a commit that wrote the dirty fields.
// Review count and average are bumped together if either of them is dirty.
func (t ConcurrencyTokens) Next(dirty FieldSet) ConcurrencyTokens {
	dirty = dirty.withGuardGroups()
	next := t
	if dirty.Has(FieldAuthorsOrdered) {
		next.AuthorsOrdered++
	}
	if dirty.Has(FieldReviewsCount) {
		next.ReviewsCount++
	}
	if dirty.Has(FieldReviewsAverageVotes) {
		next.ReviewsAverageVotes++
	}

	return next
}

// CachedFieldsDirty tells whether any field guarded by a concurrency token is in the set.
func (s FieldSet) CachedFieldsDirty() bool {
	return s.Has(FieldAuthorsOrdered) || s.Has(FieldReviewsCount) || s.Has(FieldReviewsAverageVotes)
}
