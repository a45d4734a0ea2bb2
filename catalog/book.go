package catalog

import (
	"fmt"
	"strings"
	"time"
)

const authorsSeparator = ", "

// Book is the aggregate root of the catalog.
//
// The review statistics and the ordered author names are cached on the Book itself.
// They are maintained by the stat handlers that DispatchEvents runs before each commit,
// never by re-reading the reviews.
type Book struct {
	id                    BookID
	title                 string
	description           string
	publishedOn           time.Time
	lastSignificantChange time.Time
	publisher             string
	orgPrice              Price
	actualPrice           Price
	promotionalText       string
	imageURL              string
	softDeleted           bool

	authorsOrdered      string
	reviewsCount        int
	reviewsAverageVotes float64
	tokens              ConcurrencyTokens

	reviews     Collection[Review]
	authorsLink Collection[AuthorLink]
	tagsLink    Collection[TagLink]

	events         []Event
	removedReviews []ReviewID
	original       trackedState
}

// trackedState holds the values of all mutable columns as they were loaded.
type trackedState struct {
	publishedOn         time.Time
	actualPrice         Price
	promotionalText     string
	softDeleted         bool
	authorsOrdered      string
	reviewsCount        int
	reviewsAverageVotes float64
}

// CreateBook builds a new, not yet persisted Book.
//
// It collects all validation errors: an empty/whitespace title and an empty authors list are
// reported together as ValidationErrors. AuthorsOrdered is initialized by joining the author names
// in the given order, each AuthorLink gets a 0-based Order, and the reviews collection is LoadedEmpty.
func CreateBook(
	title string,
	description string,
	publishedOn time.Time,
	lastSignificantChange time.Time,
	publisher string,
	price Price,
	imageURL string,
	authors []Author,
	tags ...Tag,
) (*Book, error) {

	if err := validateInput(bookInput{Title: title, Authors: authors}); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(authors))
	links := make([]AuthorLink, 0, len(authors))
	for i, author := range authors {
		names = append(names, author.Name)
		links = append(links, AuthorLink{AuthorID: author.ID, Order: uint8(i)}) //nolint:gosec // bounded by MaxAuthors
	}

	tagLinks := make([]TagLink, 0, len(tags))
	for _, tag := range tags {
		tagLinks = append(tagLinks, TagLink{TagID: tag.ID})
	}

	book := &Book{
		title:                 title,
		description:           description,
		publishedOn:           ToCatalogTime(publishedOn),
		lastSignificantChange: ToCatalogTime(lastSignificantChange),
		publisher:             publisher,
		orgPrice:              price,
		actualPrice:           price,
		imageURL:              imageURL,
		authorsOrdered:        strings.Join(names, authorsSeparator),
		reviews:               LoadedCollection[Review](),
		authorsLink:           LoadedCollection(links...),
		tagsLink:              LoadedCollection(tagLinks...),
	}
	book.original = book.currentState()

	return book, nil
}

// BookState is everything a store needs to restore a persisted Book.
// Child collections that were not included in the load must be NotLoadedCollection.
type BookState struct {
	ID                    BookID
	Title                 string
	Description           string
	PublishedOn           time.Time
	LastSignificantChange time.Time
	Publisher             string
	OrgPrice              Price
	ActualPrice           Price
	PromotionalText       string
	ImageURL              string
	SoftDeleted           bool
	AuthorsOrdered        string
	ReviewsCount          int
	ReviewsAverageVotes   float64
	Tokens                ConcurrencyTokens
	Reviews               Collection[Review]
	AuthorsLink           Collection[AuthorLink]
	TagsLink              Collection[TagLink]
}

// RestoreBook rebuilds a persisted Book. It raises no events and starts with no dirty fields.
func RestoreBook(state BookState) *Book {
	if state.ID == 0 {
		violate("a restored book must have an ID")
	}

	book := &Book{
		id:                    state.ID,
		title:                 state.Title,
		description:           state.Description,
		publishedOn:           ToCatalogTime(state.PublishedOn),
		lastSignificantChange: ToCatalogTime(state.LastSignificantChange),
		publisher:             state.Publisher,
		orgPrice:              state.OrgPrice,
		actualPrice:           state.ActualPrice,
		promotionalText:       state.PromotionalText,
		imageURL:              state.ImageURL,
		softDeleted:           state.SoftDeleted,
		authorsOrdered:        state.AuthorsOrdered,
		reviewsCount:          state.ReviewsCount,
		reviewsAverageVotes:   state.ReviewsAverageVotes,
		tokens:                state.Tokens,
		reviews:               state.Reviews,
		authorsLink:           state.AuthorsLink,
		tagsLink:              state.TagsLink,
	}
	book.original = book.currentState()

	return book
}

/***** Commands *****/

// AddReview appends a new review and raises ReviewAdded.
// The reviews collection must be loaded, otherwise it panics with a PreconditionViolation.
// An out-of-range rating is returned as ValidationErrors.
func (b *Book) AddReview(numStars int, comment string, voterName string) error {
	b.reviews.mustBeLoaded("Reviews")

	if err := validateInput(reviewInput{NumStars: numStars}); err != nil {
		return err
	}

	b.reviews.add(Review{NumStars: numStars, Comment: comment, VoterName: voterName})
	b.events = append(b.events, newReviewAddedEvent(numStars, b.updateReviewCachedValues))

	return nil
}

// RemoveReview removes the persisted review with reviewID and raises ReviewRemoved.
// It panics with a PreconditionViolation if the reviews collection is not loaded or has no such review.
func (b *Book) RemoveReview(reviewID ReviewID) {
	b.reviews.mustBeLoaded("Reviews")

	i := b.reviews.indexFunc(func(r Review) bool { return r.ID != 0 && r.ID == reviewID })
	if i < 0 {
		violate(fmt.Sprintf("the review with ID %d was not found in the book's Reviews", reviewID))
	}

	removed := b.reviews.removeAt(i)
	b.removedReviews = append(b.removedReviews, removed.ID)
	b.events = append(b.events, newReviewRemovedEvent(removed, b.updateReviewCachedValues))
}

// ApplyPromotion sets the actual price and the promotional text together.
// An empty or too long promotional text is returned as ValidationErrors and changes nothing.
// On success it returns a message for the user.
func (b *Book) ApplyPromotion(actualPrice Price, promotionalText string) (string, error) {
	if err := validateInput(promotionInput{PromotionalText: promotionalText}); err != nil {
		return "", err
	}

	b.actualPrice = actualPrice
	b.promotionalText = promotionalText

	return fmt.Sprintf("The book's new price is %s.", actualPrice), nil
}

// RemovePromotion resets the actual price to the original price and clears the promotional text.
func (b *Book) RemovePromotion() {
	b.actualPrice = b.orgPrice
	b.promotionalText = ""
}

// SetSoftDeleted sets the soft-delete flag.
func (b *Book) SetSoftDeleted(softDeleted bool) {
	b.softDeleted = softDeleted
}

// SetPublishedOn sets the publication date.
func (b *Book) SetPublishedOn(publishedOn time.Time) {
	b.publishedOn = ToCatalogTime(publishedOn)
}

// updateReviewCachedValues is handed to the events so that the stat handlers can store their result.
func (b *Book) updateReviewCachedValues(stats ReviewStats) {
	b.reviewsCount = stats.Count
	b.reviewsAverageVotes = stats.AverageVotes
}

/***** Queries *****/

func (b *Book) ID() BookID                       { return b.id }
func (b *Book) Title() string                    { return b.title }
func (b *Book) Description() string              { return b.description }
func (b *Book) PublishedOn() time.Time           { return b.publishedOn }
func (b *Book) LastSignificantChange() time.Time { return b.lastSignificantChange }
func (b *Book) Publisher() string                { return b.publisher }
func (b *Book) OrgPrice() Price                  { return b.orgPrice }
func (b *Book) ActualPrice() Price               { return b.actualPrice }
func (b *Book) ImageURL() string                 { return b.imageURL }
func (b *Book) SoftDeleted() bool                { return b.softDeleted }
func (b *Book) AuthorsOrdered() string           { return b.authorsOrdered }
func (b *Book) ReviewsCount() int                { return b.reviewsCount }
func (b *Book) ReviewsAverageVotes() float64     { return b.reviewsAverageVotes }
func (b *Book) Tokens() ConcurrencyTokens        { return b.tokens }
func (b *Book) Reviews() Collection[Review]      { return b.reviews }
func (b *Book) AuthorsLink() Collection[AuthorLink] {
	return b.authorsLink
}
func (b *Book) TagsLink() Collection[TagLink] { return b.tagsLink }

// PromotionalText returns the promotional text and whether a promotion is active.
func (b *Book) PromotionalText() (string, bool) {
	return b.promotionalText, b.promotionalText != ""
}

// HasPromotion is true while a promotion is active.
func (b *Book) HasPromotion() bool {
	return b.promotionalText != ""
}

// ReviewStats returns the cached review statistics.
func (b *Book) ReviewStats() ReviewStats {
	return ReviewStats{Count: b.reviewsCount, AverageVotes: b.reviewsAverageVotes}
}

// HasReview tells whether the loaded reviews contain a persisted review with reviewID.
// It panics with a PreconditionViolation if the reviews are not loaded.
func (b *Book) HasReview(reviewID ReviewID) bool {
	b.reviews.mustBeLoaded("Reviews")

	return reviewID != 0 && b.reviews.indexFunc(func(r Review) bool { return r.ID == reviewID }) >= 0
}

// IsNew is true until the Book was persisted for the first time.
func (b *Book) IsNew() bool {
	return b.id == 0
}

/***** Unit of work support *****/

// PendingEvents returns the events raised since the last dispatch, in raise order.
func (b *Book) PendingEvents() []Event {
	return append([]Event(nil), b.events...)
}

// TakePendingEvents returns the pending events and clears the queue.
func (b *Book) TakePendingEvents() []Event {
	events := b.events
	b.events = nil

	return events
}

// DirtyFields compares the mutable columns with the values they had when the Book was loaded or last committed.
// If the review count or the average changed, both are reported.
func (b *Book) DirtyFields() FieldSet {
	current := b.currentState()
	var dirty FieldSet

	if !current.publishedOn.Equal(b.original.publishedOn) {
		dirty = dirty.With(FieldPublishedOn)
	}
	if current.actualPrice != b.original.actualPrice {
		dirty = dirty.With(FieldActualPrice)
	}
	if current.promotionalText != b.original.promotionalText {
		dirty = dirty.With(FieldPromotionalText)
	}
	if current.softDeleted != b.original.softDeleted {
		dirty = dirty.With(FieldSoftDeleted)
	}
	if current.authorsOrdered != b.original.authorsOrdered {
		dirty = dirty.With(FieldAuthorsOrdered)
	}
	if current.reviewsCount != b.original.reviewsCount {
		dirty = dirty.With(FieldReviewsCount)
	}
	if current.reviewsAverageVotes != b.original.reviewsAverageVotes {
		dirty = dirty.With(FieldReviewsAverageVotes)
	}

	return dirty.withGuardGroups()
}

// ReviewChanges returns the reviews that were added but not persisted yet, and the IDs of removed persisted reviews.
func (b *Book) ReviewChanges() (added []Review, removed []ReviewID) {
	for _, r := range b.reviews.items {
		if r.ID == 0 {
			added = append(added, r)
		}
	}

	return added, append([]ReviewID(nil), b.removedReviews...)
}

// Commit describes the outcome of a successful unit of work.
type Commit struct {
	// BookID is the assigned ID; only used when the Book was new.
	BookID BookID

	// ReviewIDs are the IDs assigned to the added reviews, in the order ReviewChanges returned them.
	ReviewIDs []ReviewID

	// Tokens are the concurrency tokens as stored by the commit.
	Tokens ConcurrencyTokens
}

// Committed must be called by the store after a successful commit.
// It assigns the new IDs and makes the current state the new baseline for DirtyFields.
func (b *Book) Committed(c Commit) {
	if b.id == 0 {
		b.id = c.BookID
	}

	next := 0
	for i := range b.reviews.items {
		if b.reviews.items[i].ID == 0 && next < len(c.ReviewIDs) {
			b.reviews.items[i].ID = c.ReviewIDs[next]
			next++
		}
	}

	b.tokens = c.Tokens
	b.removedReviews = nil
	b.original = b.currentState()
}

func (b *Book) currentState() trackedState {
	return trackedState{
		publishedOn:         b.publishedOn,
		actualPrice:         b.actualPrice,
		promotionalText:     b.promotionalText,
		softDeleted:         b.softDeleted,
		authorsOrdered:      b.authorsOrdered,
		reviewsCount:        b.reviewsCount,
		reviewsAverageVotes: b.reviewsAverageVotes,
	}
}
