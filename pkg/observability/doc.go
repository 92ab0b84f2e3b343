// Package observability provides structured logging, Prometheus metrics,
// health probes, and graceful shutdown for the storefront API.
//
// # Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", id).Info("login")
//
// # Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	router.Use(metrics.Middleware)
//	router.Handle("/metrics", metrics.Handler())
//
// # Health
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	router.HandleFunc("/healthz", checker.Liveness)
//	router.HandleFunc("/readyz", checker.Readiness)
package observability
