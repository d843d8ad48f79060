// Package metrics exposes Prometheus collectors for the chat hub.
package metrics

import (
	"chatup/backend/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chatup"

// Collector groups the hub's metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	QueueSize     prometheus.Gauge
	Rooms         prometheus.Gauge
	Sessions      *prometheus.GaugeVec
	Matches       prometheus.Counter
	Messages      prometheus.Counter
	Evictions     prometheus.Counter
	PurgedRooms   prometheus.Counter
	StoreFailures *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "queue_size",
			Help: "Sessions currently searching for a partner.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rooms",
			Help: "Rooms currently held in memory, including empty ones awaiting purge.",
		}),
		Sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sessions",
			Help: "Registered sessions by status.",
		}, []string{"status"}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "matches_total",
			Help: "Pairs formed by the matchmaker.",
		}),
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_total",
			Help: "User messages appended to room logs.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "evicted_sessions_total",
			Help: "Sessions removed after their grace period expired.",
		}),
		PurgedRooms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "purged_rooms_total",
			Help: "Empty rooms removed by the sweeper.",
		}),
		StoreFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "store_errors_total",
			Help: "Failed message log and archive operations.",
		}, []string{"op"}),
	}
	reg.MustRegister(c.QueueSize, c.Rooms, c.Sessions, c.Matches, c.Messages,
		c.Evictions, c.PurgedRooms, c.StoreFailures)
	return c
}

func (c *Collector) SetQueueSize(n int) {
	if c != nil {
		c.QueueSize.Set(float64(n))
	}
}

func (c *Collector) SetRooms(n int) {
	if c != nil {
		c.Rooms.Set(float64(n))
	}
}

// SetSessions publishes one gauge value per status, zeroing absent ones.
func (c *Collector) SetSessions(byStatus map[models.SessionStatus]int) {
	if c == nil {
		return
	}
	for _, s := range []models.SessionStatus{
		models.StatusIdle, models.StatusInQueue, models.StatusInChat, models.StatusDisconnected,
	} {
		c.Sessions.WithLabelValues(string(s)).Set(float64(byStatus[s]))
	}
}

func (c *Collector) IncMatches() {
	if c != nil {
		c.Matches.Inc()
	}
}

func (c *Collector) IncMessages() {
	if c != nil {
		c.Messages.Inc()
	}
}

func (c *Collector) AddEvictions(n int) {
	if c != nil {
		c.Evictions.Add(float64(n))
	}
}

func (c *Collector) AddPurgedRooms(n int) {
	if c != nil {
		c.PurgedRooms.Add(float64(n))
	}
}

func (c *Collector) IncStoreFailure(op string) {
	if c != nil {
		c.StoreFailures.WithLabelValues(op).Inc()
	}
}
