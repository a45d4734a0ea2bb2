package catalog

import (
	"errors"
	"fmt"
	"math"
)

// StatHandler computes new review statistics from the current cached values and one event,
// then stores them through the event's callback.
type StatHandler func(current ReviewStats, event Event) error

// statHandlers is the static registry, indexed by EventKind.
var statHandlers = [...]StatHandler{
	ReviewAdded:   handleReviewAdded,
	ReviewRemoved: handleReviewRemoved,
}

// StatHandlerFor returns the registered handler for kind.
func StatHandlerFor(kind EventKind) (StatHandler, bool) {
	if int(kind) >= len(statHandlers) || statHandlers[kind] == nil {
		return nil, false
	}

	return statHandlers[kind], true
}

func handleReviewAdded(current ReviewStats, event Event) error {
	next, err := AddRating(current, event.NumStars())
	if err != nil {
		return err
	}

	event.UpdateReviewCachedValues(next)

	return nil
}

func handleReviewRemoved(current ReviewStats, event Event) error {
	next, err := RemoveRating(current, event.NumStars())
	if err != nil {
		return err
	}

	event.UpdateReviewCachedValues(next)

	return nil
}

// AddRating returns the statistics after one review with numStars was added.
//
// Rounding policy: the average is kept at full float64 precision as total/count.
// The total number of stars is recovered as RoundHalfEven(average*count), which is
// exact because ratings are integers. Adding and removing therefore both work on the
// exact integer total, and the result equals a full recomputation over the reviews.
func AddRating(current ReviewStats, numStars int) (ReviewStats, error) {
	if current.Count < 0 {
		return ReviewStats{}, inconsistent("negative review count %d", current.Count)
	}

	count := current.Count + 1
	total := totalStars(current) + float64(numStars)

	return ReviewStats{Count: count, AverageVotes: total / float64(count)}, nil
}

// RemoveRating returns the statistics after one review with numStars was removed.
// Removing the last review resets the average to 0.
func RemoveRating(current ReviewStats, numStars int) (ReviewStats, error) {
	if current.Count < 1 {
		return ReviewStats{}, inconsistent("cannot remove a review when the cached count is %d", current.Count)
	}

	count := current.Count - 1
	if count == 0 {
		return ReviewStats{}, nil
	}

	total := totalStars(current) - float64(numStars)
	if total < float64(count*MinNumStars) {
		return ReviewStats{}, inconsistent("%d stars left for %d reviews", int64(total), count)
	}

	return ReviewStats{Count: count, AverageVotes: total / float64(count)}, nil
}

// RecomputeStats computes the statistics directly from a set of reviews.
func RecomputeStats(reviews []Review) ReviewStats {
	if len(reviews) == 0 {
		return ReviewStats{}
	}

	total := 0
	for _, r := range reviews {
		total += r.NumStars
	}

	return ReviewStats{Count: len(reviews), AverageVotes: float64(total) / float64(len(reviews))}
}

func totalStars(stats ReviewStats) float64 {
	return math.RoundToEven(stats.AverageVotes * float64(stats.Count))
}

func inconsistent(format string, args ...any) error {
	return errors.Join(ErrStatsInconsistent, fmt.Errorf(format, args...))
}
