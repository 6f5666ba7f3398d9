package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Placements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrecs_placements_total",
			Help: "Placement requests by outcome",
		},
		[]string{"outcome"}, // placed, rejected
	)
	LinesCleared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrecs_lines_cleared_total",
			Help: "Full rows and columns cleared",
		},
	)
	LivesLost = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrecs_lives_lost_total",
			Help: "Lives lost to countdown expiry",
		},
	)
	StaleCountdowns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrecs_stale_countdowns_total",
			Help: "Countdown fires discarded because a newer countdown superseded them",
		},
	)
	GamesEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrecs_games_ended_total",
			Help: "Finished sessions by reason",
		},
		[]string{"reason"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tetrecs_active_sessions",
			Help: "Sessions currently held by the session manager",
		},
	)
	ScoresSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrecs_scores_submitted_total",
			Help: "High scores accepted into the table",
		},
	)
)

func init() {
	prometheus.MustRegister(Placements)
	prometheus.MustRegister(LinesCleared)
	prometheus.MustRegister(LivesLost)
	prometheus.MustRegister(StaleCountdowns)
	prometheus.MustRegister(GamesEnded)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(ScoresSubmitted)
}
