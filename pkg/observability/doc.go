/*
Package observability turns loader lifecycle hooks into Prometheus metrics
and structured log records.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))
	doc, err := strata.Open(ctx, path, strata.WithHooks(hooks))
*/
package observability
