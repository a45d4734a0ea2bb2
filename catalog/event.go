package catalog

// EventKind is the closed set of events a Book raises.
type EventKind uint8

const (
	// ReviewAdded is raised by Book.AddReview.
	ReviewAdded EventKind = iota + 1

	// ReviewRemoved is raised by Book.RemoveReview.
	ReviewRemoved
)

func (k EventKind) String() string {
	switch k {
	case ReviewAdded:
		return "ReviewAdded"
	case ReviewRemoved:
		return "ReviewRemoved"
	default:
		return "Unknown"
	}
}

// ReviewStats is the cached (count, average) pair of a Book.
type ReviewStats struct {
	Count        int
	AverageVotes float64
}

// ReviewStatsUpdater writes new review statistics back onto the aggregate that raised the event.
type ReviewStatsUpdater func(ReviewStats)

// Event records a change that requires the review statistics to be recomputed.
// It carries the delta (the added or removed rating) and the callback that stores the result.
// Events live for one unit of work: raised by a command method, consumed once by DispatchEvents.
type Event struct {
	kind     EventKind
	numStars int
	reviewID ReviewID
	update   ReviewStatsUpdater
}

func newReviewAddedEvent(numStars int, update ReviewStatsUpdater) Event {
	return Event{
		kind:     ReviewAdded,
		numStars: numStars,
		update:   update,
	}
}

func newReviewRemovedEvent(review Review, update ReviewStatsUpdater) Event {
	return Event{
		kind:     ReviewRemoved,
		numStars: review.NumStars,
		reviewID: review.ID,
		update:   update,
	}
}

// Kind returns the variant of the event.
func (e Event) Kind() EventKind {
	return e.kind
}

// NumStars returns the rating that was added or removed.
func (e Event) NumStars() int {
	return e.numStars
}

// ReviewID returns the ID of the removed review. It is zero for ReviewAdded.
func (e Event) ReviewID() ReviewID {
	return e.reviewID
}

// UpdateReviewCachedValues stores the computed statistics on the aggregate that raised the event.
func (e Event) UpdateReviewCachedValues(stats ReviewStats) {
	if e.update != nil {
		e.update(stats)
	}
}
