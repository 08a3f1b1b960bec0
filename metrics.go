package rbclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rb_client",
			Name:      "cart_operations_total",
			Help:      "Cart operations by name and outcome.",
		},
		[]string{"op", "outcome"},
	)

	staleCartRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rb_client",
			Name:      "stale_cart_recoveries_total",
			Help:      "Add-item calls that recreated a vanished guest cart.",
		},
	)
)
