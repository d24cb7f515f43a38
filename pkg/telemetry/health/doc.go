// Package health serves the relay's liveness, readiness and version probes.
//
// Liveness answers 200 as long as the process serves HTTP. Readiness runs
// every registered check concurrently, each bounded by the check timeout,
// and answers 503 when any of them fails. The relay registers a config
// check and a backend check:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("config", health.ConfigCheck(config.GetConfig))
//	checker.RegisterCheck("backend", health.PingCheck(backend))
//	health.Register(mux, checker, cfg.Telemetry.Health, health.NewVersionInfo(version, commit, date))
package health
