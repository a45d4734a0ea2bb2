package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/book-catalog-go/app/features/command/addreview"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/applypromotion"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/changepublicationdate"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/removepromotion"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/removereview"
	"github.com/AntonStoeckl/book-catalog-go/app/features/command/softdeletebook"
	"github.com/AntonStoeckl/book-catalog-go/app/features/query/listbooks"
	"github.com/AntonStoeckl/book-catalog-go/catalog"
	"github.com/AntonStoeckl/book-catalog-go/catalog/listing"
)

var (
	errMissingBookID   = errors.New("-book is required")
	errMissingReviewID = errors.New("-review is required")
	jsonAPI          = jsoniter.ConfigCompatibleWithStandardLibrary
)

func (a *app) list(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("list", flag.ContinueOnError)
	filterKind := flags.Int("filter", int(listing.NoFilter), "filter kind: 0 all, 1 by votes, 2 by tag, 3 by year")
	filterValue := flags.String("value", "", `filter value, e.g. "4", "Editor's Choice", "2024", or "`+listing.ComingSoon+`"`)
	sortKind := flags.Int("sort", int(listing.SimpleOrder), "order: 0 newest, 1 votes, 2 publication date, 3 price asc, 4 price desc")
	pageNumber := flags.Int("page", 1, "page number, starting at 1")
	pageSize := flags.Int("size", 0, "page size (default BOOKCATALOG_PAGE_SIZE)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	core, err := listbooks.NewQueryHandler(a.store, listbooks.WithDefaultPageSize(a.cfg.PageSize))
	if err != nil {
		return err
	}

	handler, err := observedQuery[listbooks.Query, listbooks.BookList](a, core)
	if err != nil {
		return err
	}

	bookList, err := handler.Handle(ctx, listbooks.BuildQuery(
		listing.FilterKind(*filterKind), //nolint:gosec // validated by the handler
		*filterValue,
		listing.OrderBy(*sortKind), //nolint:gosec // validated by the handler
		*pageNumber,
		*pageSize,
	))
	if err != nil {
		return err
	}

	out, err := jsonAPI.MarshalIndent(bookList, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.stdout, string(out))

	return err
}

func (a *app) review(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("review", flag.ContinueOnError)
	bookID := flags.Int64("book", 0, "book ID")
	stars := flags.Int("stars", 0, "rating, 1 to 5")
	comment := flags.String("comment", "", "review comment")
	voter := flags.String("voter", "anonymous", "name of the voter")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *bookID == 0 {
		return errMissingBookID
	}

	handler, err := observedCommand[addreview.Command](a, addreview.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	if _, err = handler.Handle(ctx, addreview.BuildCommand(*bookID, *stars, *comment, *voter)); err != nil {
		return err
	}

	return a.printf("review added to book %d\n", *bookID)
}

func (a *app) promote(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("promote", flag.ContinueOnError)
	bookID := flags.Int64("book", 0, "book ID")
	cents := flags.Int64("cents", 0, "promotional price in cents")
	text := flags.String("text", "", "promotional text")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *bookID == 0 {
		return errMissingBookID
	}

	handler, err := observedCommand[applypromotion.Command](a, applypromotion.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	result, err := handler.Handle(ctx, applypromotion.BuildCommand(*bookID, catalog.PriceFromCents(*cents), *text))
	if err != nil {
		return err
	}

	return a.printf("%s\n", result.Message)
}

func (a *app) softDelete(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("delete", flag.ContinueOnError)
	bookID := flags.Int64("book", 0, "book ID")
	undo := flags.Bool("undo", false, "make the book visible again")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *bookID == 0 {
		return errMissingBookID
	}

	handler, err := observedCommand[softdeletebook.Command](a, softdeletebook.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	command := softdeletebook.BuildCommand(*bookID)
	if *undo {
		command = softdeletebook.BuildUndeleteCommand(*bookID)
	}

	result, err := handler.Handle(ctx, command)
	if err != nil {
		return err
	}

	return a.printChange(*bookID, result.Idempotent)
}

func (a *app) unreview(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("unreview", flag.ContinueOnError)
	bookID := flags.Int64("book", 0, "book ID")
	reviewID := flags.Int64("review", 0, "review ID")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *bookID == 0 {
		return errMissingBookID
	}

	if *reviewID == 0 {
		return errMissingReviewID
	}

	handler, err := observedCommand[removereview.Command](a, removereview.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	if _, err = handler.Handle(ctx, removereview.BuildCommand(*bookID, *reviewID)); err != nil {
		return err
	}

	return a.printf("review %d removed from book %d\n", *reviewID, *bookID)
}

func (a *app) unpromote(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("unpromote", flag.ContinueOnError)
	bookID := flags.Int64("book", 0, "book ID")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *bookID == 0 {
		return errMissingBookID
	}

	handler, err := observedCommand[removepromotion.Command](a, removepromotion.NewCommandHandler(a.store, a.cfg.RetryOptions()...))
	if err != nil {
		return err
	}

	result, err := handler.Handle(ctx, removepromotion.BuildCommand(*bookID))
	if err != nil {
		return err
	}

	return a.printChange(*bookID, result.Idempotent)
}

func (a *app) publish(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("publish", flag.ContinueOnError)
	bookID := flags.Int64("book", 0, "book ID")
	date := flags.String("date", "", "new publication date, YYYY-MM-DD")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *bookID == 0 {
		return errMissingBookID
	}

	publishedOn, err := time.Parse(time.DateOnly, *date)
	if err != nil {
		return fmt.Errorf("-date: %w", err)
	}

	handler, err := observedCommand[changepublicationdate.Command](
		a,
		changepublicationdate.NewCommandHandler(a.store, a.cfg.RetryOptions()...),
	)
	if err != nil {
		return err
	}

	result, err := handler.Handle(ctx, changepublicationdate.BuildCommand(*bookID, publishedOn))
	if err != nil {
		return err
	}

	return a.printChange(*bookID, result.Idempotent)
}

func (a *app) printChange(bookID int64, idempotent bool) error {
	if idempotent {
		return a.printf("book %d unchanged\n", bookID)
	}

	return a.printf("book %d updated\n", bookID)
}

func (a *app) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(a.stdout, format, args...)
	return err
}
