// Package auth reports whether the credentials a live sync needs are in
// place. Checks are local only; no token is exchanged.
package auth

// State represents the authentication state of a service.
type State int

const (
	// StateConfigured means the service has credentials configured.
	StateConfigured State = iota
	// StateMissing means required credentials are missing.
	StateMissing
	// StateInvalid means credentials are found but malformed or invalid.
	StateInvalid
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateConfigured:
		return "Configured"
	case StateMissing:
		return "Missing"
	case StateInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Status is the authentication status of one service.
type Status struct {
	Service string `json:"service" yaml:"service"`
	State   State  `json:"-" yaml:"-"`
	Summary string `json:"summary" yaml:"summary"`
	Account string `json:"account,omitempty" yaml:"account,omitempty"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Checker checks authentication status for the export and sheets services.
type Checker struct{}

// NewChecker creates a new authentication checker.
func NewChecker() *Checker {
	return &Checker{}
}
