// Command today prints today's matches in tournaments that feature a
// favorite player, using the same configuration as the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"

	"github.com/riskibarqy/tennis-reminder/internal/app"
	"github.com/riskibarqy/tennis-reminder/internal/config"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

type options struct {
	Favorites []string `long:"favorite" short:"f" description:"Favorite player name, repeatable (overrides FAVORITE_PLAYERS)"`
	Timezone  string   `long:"timezone" short:"z" description:"IANA reference zone (overrides REFERENCE_TIMEZONE)"`
	At        string   `long:"at" description:"RFC3339 instant whose local day is listed (default: now)"`
	Verbose   bool     `long:"verbose" short:"v" description:"Debug logging on stderr"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	level := logging.LevelWarn
	if opts.Verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewConsole(level)
	defer func() { _ = logger.Sync() }()

	if err := run(opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, "today:", err)
		os.Exit(1)
	}
}

func run(opts options, logger *logging.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(opts.Favorites) > 0 {
		cfg.FavoritePlayers = opts.Favorites
	}
	if zone := strings.TrimSpace(opts.Timezone); zone != "" {
		if cfg.Location, err = time.LoadLocation(zone); err != nil {
			return fmt.Errorf("parse --timezone: %w", err)
		}
	}
	cfg.FeedCacheTTL = 0

	var mdOpts []usecase.MatchdayOption
	if opts.At != "" {
		at, err := time.Parse(time.RFC3339, opts.At)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
		mdOpts = append(mdOpts, usecase.WithMatchdayClock(func() time.Time { return at }))
	}

	providers, _ := app.NewFeedProviders(cfg, logger, nil)
	matchdaySvc := usecase.NewMatchdayService(providers, usecase.MatchdayConfig{
		Favorites: cfg.FavoritePlayers,
		Location:  cfg.Location,
	}, logger, mdOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := matchdaySvc.Today(ctx, usecase.TriggerOnDemand)
	if err != nil {
		return err
	}
	for _, row := range result.SourceErrors {
		logger.Warn("feed unavailable", "source", row.Source, "error", row.Err)
	}
	fmt.Println(strings.Join(result.Chunks, "\n\n"))
	return nil
}
