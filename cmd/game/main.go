package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/ManaSearch/internal/config"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/ManaSearch/internal/match"
	"github.com/mitchelldurbincs/ManaSearch/internal/mcts"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	deckA := flag.String("deck-a", "mono_red", "Decklist name or text for the first seat")
	deckB := flag.String("deck-b", "mono_green", "Decklist name or text for the second seat")
	playerA := flag.String("player-a", "random", "Policy for the first seat (random, mcts)")
	playerB := flag.String("player-b", "mcts", "Policy for the second seat (random, mcts)")
	seed := flag.Uint64("seed", 0, "Match seed (0 picks one from the clock)")
	budgetMs := flag.Int("budget-ms", -1, "MCTS budget per decision in milliseconds (-1 to use config default)")
	games := flag.Int("games", 1, "Number of games to play")
	verbose := flag.Bool("verbose", false, "Log every game event")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	setupLogging(*logLevel)

	budget := cfg.Budget()
	if *budgetMs > 0 {
		budget = time.Duration(*budgetMs) * time.Millisecond
	}

	spec, err := buildSpec(cfg, *deckA, *deckB, *playerA, *playerB, *seed, budget)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid match")
	}

	metrics := mcts.NewMetrics()
	runnerCfg := match.RunnerConfig{
		Concurrency: cfg.Match.Concurrency,
		Game:        cfg.GameSettings(),
		Random:      cfg.RandomPlayer(),
		Budget:      budget,
		Exploration: cfg.MCTS.Exploration,
		RolloutCap:  cfg.MCTS.MaxRolloutActions,
		Metrics:     metrics,
	}
	if *verbose {
		runnerCfg.Observe = func(matchID string, bus *events.EventBus) {
			bus.Subscribe(subscribers.NewLoggerSubscriber("cli_"+matchID, log.Logger, zerolog.InfoLevel))
		}
	}
	runner := match.NewRunner(runnerCfg, log.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	specs := make([]match.Spec, *games)
	for i := range specs {
		specs[i] = spec
		if spec.Seed != 0 {
			specs[i].Seed = spec.Seed + uint64(i)
		}
	}

	records, err := runner.RunMatches(ctx, specs)
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		printRecord(rec)
	}
	printSummary(records, metrics.Snapshot())
	if err != nil {
		log.Fatal().Err(err).Msg("Match failed")
	}
}

func buildSpec(cfg *config.Config, deckA, deckB, playerA, playerB string, seed uint64, budget time.Duration) (match.Spec, error) {
	spec := match.Spec{Seed: seed, Budget: budget}
	for i, name := range []string{deckA, deckB} {
		list, err := cfg.Decklist(name)
		if err != nil {
			return spec, err
		}
		spec.Decklists[i] = list
	}
	for i, name := range []string{playerA, playerB} {
		kind, err := match.ParsePlayerKind(name)
		if err != nil {
			return spec, err
		}
		spec.Players[i] = kind
	}
	if seed == 0 && cfg.MCTS.Seed != 0 {
		spec.Seed = cfg.MCTS.Seed
	}
	return spec, nil
}

func printRecord(rec match.Record) {
	outcome := "Draw"
	if rec.Winner >= 0 {
		outcome = fmt.Sprintf("Seat %d (%s) wins", rec.Winner, rec.Players[rec.Winner])
	}
	if !rec.Finished() {
		outcome = "Aborted: " + rec.Error
	}
	fmt.Printf("%s  seed=%d  %s vs %s  turns=%d actions=%d  %s  [%v]\n",
		rec.ID, rec.Seed, rec.Players[0], rec.Players[1], rec.Turns, rec.Actions, outcome, rec.Duration.Round(time.Millisecond))
}

func printSummary(records []match.Record, snap mcts.MetricsSnapshot) {
	var wins [2]int
	draws := 0
	for _, rec := range records {
		switch {
		case rec.ID == "" || !rec.Finished():
		case rec.Winner < 0:
			draws++
		default:
			wins[rec.Winner]++
		}
	}
	fmt.Printf("\nSeat 0: %d wins  Seat 1: %d wins  Draws: %d\n", wins[0], wins[1], draws)
	if snap.Searches > 0 {
		fmt.Printf("Searches: %d  iterations: %d (%.0f/s)  playouts: %d  timeouts: %d\n",
			snap.Searches, snap.Iterations, snap.IterationsPerSecond(), snap.Playouts, snap.Timeouts)
	}
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
