package health

import (
	"context"
	"time"
)

// Status is the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is one component's outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentEmbedding = "embedding"
	ComponentIndex     = "index"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service runs health checks. Only the database is required; the
// embedding provider and the search index degrade the report.
type Service struct {
	db       Pinger
	optional map[string]Checker
	timeout  time.Duration
}

// New creates a Service. embedding and index can be nil.
func New(db Pinger, embedding, index Checker) *Service {
	opt := make(map[string]Checker, 2)
	if embedding != nil {
		opt[ComponentEmbedding] = embedding
	}
	if index != nil {
		opt[ComponentIndex] = index
	}
	return &Service{db: db, optional: opt, timeout: defaultCheckTimeout}
}

// Check runs all health checks, each under its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.optional)+1)

	checks[ComponentDatabase] = s.probe(ctx, s.db.Ping)
	for name, c := range s.optional {
		checks[name] = s.probe(ctx, c.HealthCheck)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
