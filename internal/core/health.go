package core

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// healthCheckTimeout bounds the total time spent on all probes.
const healthCheckTimeout = 2 * time.Second

// HealthProbe is a health check for one critical dependency.
type HealthProbe interface {
	// Name identifies the probe in the response body, e.g. "database".
	Name() string
	// Check returns an error when the dependency is unhealthy. It must
	// respect the context deadline.
	Check(ctx context.Context) error
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs all registered probes concurrently. 200 when every probe
// passes, 503 when any fails or misses the deadline. Public, no auth.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if len(s.HealthProbes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	errs := make([]error, len(s.HealthProbes))
	var wg sync.WaitGroup
	for i, probe := range s.HealthProbes {
		wg.Add(1)
		go func(i int, p HealthProbe) {
			defer wg.Done()
			errs[i] = p.Check(ctx)
		}(i, probe)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timedOut := false
	select {
	case <-done:
	case <-ctx.Done():
		timedOut = true
	}

	components := make(map[string]componentStatus, len(s.HealthProbes))
	allHealthy := true
	for i, probe := range s.HealthProbes {
		switch {
		case timedOut:
			allHealthy = false
			components[probe.Name()] = componentStatus{Status: "unhealthy", Message: "health check timed out"}
		case errs[i] != nil:
			allHealthy = false
			components[probe.Name()] = componentStatus{Status: "unhealthy", Message: errs[i].Error()}
		default:
			components[probe.Name()] = componentStatus{Status: "healthy"}
		}
	}

	resp := healthResponse{Status: "healthy", Components: components}
	if !allHealthy {
		resp.Status = "unhealthy"
		JSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	JSON(w, r, http.StatusOK, resp)
}
