// Command shorten submits one URL to the shortening service from the terminal.
//
//	shorten [-s service_url] [-t timeout] <url>
//	shorten [-s service_url] -stats <code>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MikhailRaia/shortener-form/internal/client"
	"github.com/MikhailRaia/shortener-form/internal/config"
	"github.com/MikhailRaia/shortener-form/internal/form"
	"github.com/MikhailRaia/shortener-form/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shorten", flag.ContinueOnError)
	fs.SetOutput(stderr)
	statsCode := fs.String("stats", "", "print click statistics of a short code instead of shortening")

	cfg, err := config.Load(fs, args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger.Setup(stderr, cfg.LogLevel)

	shortener := client.New(cfg.ServiceURL, cfg.RequestTimeout)

	if *statsCode != "" {
		return printStats(ctx, shortener, *statsCode, stdout, stderr)
	}

	controller := form.NewController(shortener)
	if _, err := controller.Submit(ctx, strings.Join(fs.Args(), " ")); err != nil {
		fmt.Fprintln(stderr, controller.View().ErrorMessage)

		var validationErr *form.ValidationError
		if errors.As(err, &validationErr) {
			return 2
		}
		return 1
	}

	view := controller.View()
	fmt.Fprintln(stdout, view.Result.ShortURL)
	return 0
}

func printStats(ctx context.Context, c *client.Client, code string, stdout, stderr io.Writer) int {
	stats, err := c.Stats(ctx, code)
	if err != nil {
		var svcErr *client.ServiceError
		if errors.As(err, &svcErr) {
			fmt.Fprintln(stderr, svcErr.Message)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	fmt.Fprintf(stdout, "code:     %s\n", stats.ShortCode)
	fmt.Fprintf(stdout, "url:      %s\n", stats.OriginalURL)
	fmt.Fprintf(stdout, "clicks:   %d\n", stats.Clicks)
	fmt.Fprintf(stdout, "created:  %s\n", stats.CreatedAt)
	return 0
}
