package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rb_client",
		Subsystem: "guest_cache",
		Name:      "hits_total",
		Help:      "Existence checks answered from the verdict cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rb_client",
		Subsystem: "guest_cache",
		Name:      "misses_total",
		Help:      "Existence checks that required a server probe.",
	})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rb_client",
		Subsystem: "guest_cache",
		Name:      "evictions_total",
		Help:      "Entries evicted to keep the cache under capacity.",
	})
)
