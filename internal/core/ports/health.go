package ports

import "context"

// HealthChecker reports whether an external dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
	// Name is the dependency name, e.g. "postgresql" or "redis".
	Name() string
}
