package service

import "github.com/prometheus/client_golang/prometheus"

var (
	drawTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gift_draws_total", Help: "Count of draw attempts by result"},
		[]string{"result"},
	)
	drawParticipants = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gift_draw_participants",
		Help:    "Participants per successful draw",
		Buckets: prometheus.ExponentialBuckets(2, 2, 12),
	})
	membershipTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gift_room_membership_changes_total", Help: "Room membership changes"},
		[]string{"op"},
	)
)

func init() { prometheus.MustRegister(drawTotal, drawParticipants, membershipTotal) }
