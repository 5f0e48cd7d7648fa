package agent

import (
	"context"
	"expvar"

	"github.com/golang/glog"

	"blackjack_ai/internal/domain"
)

var episodesTrained = expvar.NewInt("episodes_trained")

type TrainOptions struct {
	Episodes int
	// ReportEvery logs progress every n episodes; zero disables it.
	ReportEvery int
}

type TrainStats struct {
	Episodes int `json:"episodes"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Pushes   int `json:"pushes"`
	States   int `json:"states"`
}

// WinRate is the share of finished episodes the player won.
func (s TrainStats) WinRate() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Episodes)
}

// Train plays opts.Episodes episodes against env, exploring with the
// learner's epsilon and updating its table after every step. It stops
// between episodes when ctx is done and returns the stats so far.
func Train(ctx context.Context, env *domain.Environment, q *QLearner, opts TrainOptions) (TrainStats, error) {
	var stats TrainStats
	for ep := 0; ep < opts.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			stats.States = q.table.Len()
			return stats, err
		}
		if opts.ReportEvery > 0 && ep%opts.ReportEvery == 0 {
			glog.Infof("training episode %d/%d states=%d", ep, opts.Episodes, q.table.Len())
		}

		reward, err := runEpisode(env, q)
		if err != nil {
			stats.States = q.table.Len()
			return stats, err
		}
		stats.Episodes++
		episodesTrained.Add(1)
		switch reward {
		case domain.Win:
			stats.Wins++
		case domain.Loss:
			stats.Losses++
		default:
			stats.Pushes++
		}
	}
	stats.States = q.table.Len()
	return stats, nil
}

func runEpisode(env *domain.Environment, q *QLearner) (domain.Reward, error) {
	state := env.Reset()
	for {
		action := q.GetAction(state, true)
		next, reward, done, err := env.Step(action)
		if err != nil {
			return 0, err
		}
		if err := q.Learn(state, action, reward, next); err != nil {
			return 0, err
		}
		if done {
			return reward, nil
		}
		state = next
	}
}
