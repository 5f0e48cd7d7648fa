package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"blackjack_ai/internal/agent"
	"blackjack_ai/internal/config"
	"blackjack_ai/internal/domain"
	"blackjack_ai/internal/store"
)

func main() {
	_ = flag.Set("logtostderr", "true")
	episodes := flag.Int("episodes", 10000, "number of training episodes")
	out := flag.String("out", "", "agent file to write (defaults to AGENT_PATH)")
	seed := flag.Int64("seed", 0, "random seed; 0 seeds from the clock")
	report := flag.Int("report", 1000, "log progress every n episodes")
	resume := flag.Bool("resume", false, "continue training from the stored table")
	pgName := flag.String("pg-name", "", "also save the table to Postgres (DATABASE_URL) under this name")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load()
	if err != nil {
		glog.Fatalf("config: %v", err)
	}
	path := *out
	if path == "" {
		path = cfg.AgentPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	seeds := domain.NewRNG(*seed)
	q := agent.New(cfg.Agent, domain.ChildRNG(seeds))
	if *resume {
		if err := q.Load(path); err != nil {
			glog.Fatalf("resume: %v", err)
		}
		glog.Infof("resuming from %s with %d states", path, q.Table().Len())
	}

	env := domain.NewEnvironment(domain.ChildRNG(seeds))
	stats, err := agent.Train(ctx, env, q, agent.TrainOptions{Episodes: *episodes, ReportEvery: *report})
	if err != nil {
		glog.Warningf("training interrupted: %v", err)
	}

	if err := q.Save(path); err != nil {
		glog.Fatalf("save: %v", err)
	}
	glog.Infof("saved %d states to %s", q.Table().Len(), path)

	if *pgName != "" {
		if cfg.DatabaseURL == "" {
			glog.Fatalf("-pg-name needs DATABASE_URL")
		}
		db, err := store.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			glog.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			glog.Fatalf("migrate: %v", err)
		}
		if err := db.SaveTable(ctx, *pgName, q.Config(), q.Table()); err != nil {
			glog.Fatalf("save to postgres: %v", err)
		}
		glog.Infof("saved table %q to postgres", *pgName)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
