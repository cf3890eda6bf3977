package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/mcdev12/gooseclicker/go/internal/httpx"
)

// CheckFunc reports a dependency's health. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Status is the /health response body
type Status struct {
	Healthy   bool              `json:"healthy"`
	Checks    map[string]string `json:"checks"`
	Errors    []string          `json:"errors"`
	Timestamp time.Time         `json:"timestamp"`
}

// Checker runs named dependency checks.
type Checker struct {
	checks  map[string]CheckFunc
	timeout time.Duration
	now     func() time.Time
}

func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
		now:     time.Now,
	}
}

// Add registers a check. Call before serving.
func (c *Checker) Add(name string, check CheckFunc) *Checker {
	c.checks[name] = check
	return c
}

func (c *Checker) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := Status{
		Healthy:   true,
		Checks:    make(map[string]string, len(c.checks)),
		Errors:    []string{},
		Timestamp: c.now().UTC(),
	}

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			status.Healthy = false
			status.Checks[name] = "down"
			status.Errors = append(status.Errors, name+": "+err.Error())
			continue
		}
		status.Checks[name] = "ok"
	}
	return status
}

// ServeHTTP answers 200 when every check passes and 503 otherwise.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := c.Check(r.Context())

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	httpx.JSON(w, code, status)
}
