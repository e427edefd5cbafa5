package deps

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/metrics"
	"github.com/MrSnakeDoc/jot/internal/notebook"
	"github.com/MrSnakeDoc/jot/internal/storage"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time    // for testing, defaults to time.Now
	AllowedCIDRS    []string            // IPs/CIDRs allowed to reach the API
	TrustProxy      bool                // true if running behind a trusted reverse proxy
	RateLimitBurst  int                 // write requests per client in a burst, 0 disables
	RateLimitPerMin int                 // sustained write requests per client per minute
	Notebook        *notebook.Notebook  // notes, categories, filter, selection, toasts
	Storage         storage.Storage     // backend the notebook persists to
	StorageKind     storage.Kind        // memory | file | sqlite | redis
	Metrics         *metrics.Metrics    // nil disables /metrics
	Validate        *validator.Validate // request validation

	// WriteLimit is the rate limiter shared by every mutating route.
	// Set by httpserver.New; nil means no limit.
	WriteLimit func(http.Handler) http.Handler
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
