// Command streamctl is the maintenance CLI: it migrates the schema and
// inspects feeds against a configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/studyhall/stream"
	"github.com/studyhall/stream/internal/config"
	"github.com/studyhall/stream/internal/observability"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: streamctl [-config path] <migrate|public|popular|active>")
		os.Exit(2)
	}

	ctx := context.Background()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if conf.Trace.Enable {
		shutdown, err := observability.Setup(ctx, "streamctl", conf.Trace.Endpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up tracing")
		}
		defer shutdown(ctx)
	}

	core, err := stream.Open(*configPath, stream.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open core")
	}

	switch flag.Arg(0) {
	case "migrate":
		if err := core.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("schema up to date")
	case "public":
		feed, err := core.PublicFeed(ctx, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("public feed failed")
		}
		for _, activity := range feed {
			fmt.Printf("%d\t%s\tactor=%d\t%s\n", activity.ID, activity.CreatedOn.Format("2006-01-02 15:04:05"), activity.ActorID, activity.Verb)
		}
	case "popular":
		printRanks(ctx, core.PopularScopes)
	case "active":
		printRanks(ctx, core.ActiveScopes)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		os.Exit(2)
	}
}

func printRanks(ctx context.Context, query func(context.Context, int) ([]stream.ScopeRank, error)) {
	ranks, err := query(ctx, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("ranking failed")
	}
	for _, rank := range ranks {
		fmt.Printf("scope=%d\tcount=%d\n", rank.ScopeID, rank.Count)
	}
}
