package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"blackjack_ai/internal/agent"
	"blackjack_ai/internal/api"
	"blackjack_ai/internal/config"
	"blackjack_ai/internal/domain"
	"blackjack_ai/internal/store"
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load()
	if err != nil {
		glog.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeds := domain.NewRNG(cfg.Seed)
	q := agent.New(cfg.Agent, domain.ChildRNG(seeds))
	env := domain.NewEnvironment(domain.ChildRNG(seeds))
	if err := loadOrTrain(ctx, cfg, q, env); err != nil {
		glog.Fatalf("agent: %v", err)
	}

	ms := store.NewMemoryStore(q, store.Options{
		Secret:      []byte(cfg.SessionSecret),
		TTL:         cfg.SessionTTL,
		IdleTimeout: cfg.SessionIdle,
		Seed:        cfg.Seed,
	})
	defer ms.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(ms, q, api.Options{StaticDir: cfg.StaticDir, DebugVars: cfg.DebugVars}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			glog.Warningf("shutdown: %v", err)
		}
	}()

	glog.Infof("server started at http://localhost%s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		glog.Fatalf("serve: %v", err)
	}
	glog.Info("server stopped")
}

// loadOrTrain restores the agent's table from Postgres or the agent file,
// training and persisting a fresh one when none is stored yet.
func loadOrTrain(ctx context.Context, cfg *config.Config, q *agent.QLearner, env *domain.Environment) error {
	var db *store.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	var err error
	if db != nil {
		var t *agent.QTable
		t, err = db.LoadTable(ctx, cfg.TableName)
		if err == nil {
			q.SetTable(t)
		}
	} else {
		err = q.Load(cfg.AgentPath)
	}
	if err == nil {
		glog.Infof("loaded trained agent: %d states", q.Table().Len())
		return nil
	}
	if !errors.Is(err, agent.ErrNoTable) {
		return err
	}

	glog.Infof("training new agent for %d episodes", cfg.TrainEpisodes)
	stats, err := agent.Train(ctx, env, q, agent.TrainOptions{
		Episodes:    cfg.TrainEpisodes,
		ReportEvery: cfg.ReportEvery,
	})
	if err != nil {
		return err
	}
	glog.Infof("training completed: episodes=%d win_rate=%.3f states=%d", stats.Episodes, stats.WinRate(), stats.States)

	if db != nil {
		err = db.SaveTable(ctx, cfg.TableName, q.Config(), q.Table())
	} else {
		err = q.Save(cfg.AgentPath)
	}
	if err != nil {
		return err
	}
	glog.Info("agent saved")
	return nil
}
