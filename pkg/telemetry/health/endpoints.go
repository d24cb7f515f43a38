package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"mercator-hq/relay/pkg/config"
)

// VersionInfo is the body of the version endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// NewVersionInfo fills in the Go version.
func NewVersionInfo(version, commit, buildTime string) VersionInfo {
	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// LivenessHandler always answers 200 while the process serves HTTP.
//
//	{"status": "ok", "timestamp": "2026-01-02T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowProbeMethod(w, r) {
			return
		}
		writeStatus(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler runs all checks. It answers 503 when any fails.
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "config": {"status": "ok", "duration_ms": 0.01},
//	        "backend": {"status": "unhealthy", "message": "fixtures dir missing", "duration_ms": 0.2}
//	    },
//	    "timestamp": "2026-01-02T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowProbeMethod(w, r) {
			return
		}
		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if !status.Ready() {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, r, code, status)
	}
}

// VersionHandler serves build information.
func VersionHandler(info VersionInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowProbeMethod(w, r) {
			return
		}
		writeStatus(w, r, http.StatusOK, info)
	}
}

// Register mounts the liveness, readiness and version endpoints on mux.
func Register(mux *http.ServeMux, c *Checker, cfg config.HealthConfig, info VersionInfo) {
	mux.HandleFunc(cfg.LivenessPath, c.LivenessHandler())
	mux.HandleFunc(cfg.ReadinessPath, c.ReadinessHandler())
	mux.HandleFunc("/version", VersionHandler(info))
}

func allowProbeMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeStatus(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(body)
	}
}
