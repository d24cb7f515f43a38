package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the Prometheus exposition handler for the collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// HandlerWithOptions returns an exposition handler with custom options.
func (c *Collector) HandlerWithOptions(opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(c.registry, opts)
}
