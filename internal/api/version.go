package api

import (
	"net/http"
	"runtime"

	"github.com/tripline/server/internal/api/handlers"
)

// BuildInfo is stamped via ldflags at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// WithDefaults fills unset fields so the /version payload never has blanks.
func (b BuildInfo) WithDefaults() BuildInfo {
	if b.Version == "" {
		b.Version = "dev"
	}
	if b.GitCommit == "" {
		b.GitCommit = "unknown"
	}
	if b.BuildDate == "" {
		b.BuildDate = "unknown"
	}
	b.GoVersion = runtime.Version()
	return b
}

// VersionHandler serves GET /version.
func VersionHandler(info BuildInfo) http.Handler {
	info = info.WithDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, info)
	})
}
