package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "n8nmgr_nginx_reloads_total",
		Help: "Total number of successful nginx config applications",
	})
	reloadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "n8nmgr_nginx_reload_failures_total",
		Help: "Total number of failed nginx config applications",
	})
	configuredRanges = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "n8nmgr_acl_ranges",
		Help: "Number of IP ranges in the applied access-control set",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(reloadsTotal, reloadFailuresTotal, configuredRanges)
}

// IncReload increments the successful reload counter.
func IncReload() { reloadsTotal.Inc() }

// IncReloadFailure increments the failed reload counter.
func IncReloadFailure() { reloadFailuresTotal.Inc() }

// SetConfiguredRanges records the size of the applied range set.
func SetConfiguredRanges(n int) { configuredRanges.Set(float64(n)) }
