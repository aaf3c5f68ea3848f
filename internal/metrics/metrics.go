// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PurchasesCompleted counts sales that deducted stock and were recorded.
	PurchasesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mise_purchases_completed_total",
		Help: "Completed menu item purchases.",
	})

	// PurchasesRejected counts purchase attempts turned away, by reason.
	PurchasesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mise_purchases_rejected_total",
		Help: "Rejected purchase attempts by reason.",
	}, []string{"reason"})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
