// Package main provides the bookcatalog CLI. It reads its configuration from BOOKCATALOG_* environment variables,
// see package config.
//
// Usage:
//
//	bookcatalog schema
//	bookcatalog seed
//	bookcatalog list      [-filter 0..3] [-value text] [-sort 0..4] [-page n] [-size n]
//	bookcatalog review    -book id -stars 1..5 [-comment text] [-voter name]
//	bookcatalog unreview  -book id -review id
//	bookcatalog promote   -book id -cents n -text text
//	bookcatalog unpromote -book id
//	bookcatalog publish   -book id -date YYYY-MM-DD
//	bookcatalog delete    -book id [-undo]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/book-catalog-go/app/config"
)

var errUsage = errors.New("usage: bookcatalog schema|seed|list|review|unreview|promote|unpromote|publish|delete [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, cfg.NewLogger(stderr), stdout)
	if err != nil {
		return err
	}
	defer a.close()

	switch args[0] {
	case "schema":
		return a.createSchema(ctx)
	case "seed":
		return a.seed(ctx)
	case "list":
		return a.list(ctx, args[1:])
	case "review":
		return a.review(ctx, args[1:])
	case "unreview":
		return a.unreview(ctx, args[1:])
	case "promote":
		return a.promote(ctx, args[1:])
	case "unpromote":
		return a.unpromote(ctx, args[1:])
	case "publish":
		return a.publish(ctx, args[1:])
	case "delete":
		return a.softDelete(ctx, args[1:])
	default:
		return errUsage
	}
}
