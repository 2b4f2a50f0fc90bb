package healthcheck

// HealthcheckFunc returns a status message and whether the check is healthy. Checks must not
// block: report on downstream dependencies from state recorded by the component, never by making
// a roundtrip.
type HealthcheckFunc func() (string, HealthyStatus)

type HealthyStatus bool

const (
	Healthy   = HealthyStatus(true)
	Unhealthy = HealthyStatus(false)
)

// HealthCheckProvider reports whether a component can accept work.
type HealthCheckProvider interface {
	HealthChecks() []HealthcheckFunc
}

// DeepCheckProvider reports on what a component depends on, such as its collector.
type DeepCheckProvider interface {
	DeepChecks() []HealthcheckFunc
}

// Collect gathers the checks of every provider. Values implementing neither interface are ignored.
func Collect(providers ...interface{}) (healthChecks []HealthcheckFunc, deepChecks []HealthcheckFunc) {
	for _, p := range providers {
		if hcp, ok := p.(HealthCheckProvider); ok {
			healthChecks = append(healthChecks, hcp.HealthChecks()...)
		}
		if dcp, ok := p.(DeepCheckProvider); ok {
			deepChecks = append(deepChecks, dcp.DeepChecks()...)
		}
	}
	return healthChecks, deepChecks
}
