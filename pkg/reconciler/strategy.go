package reconciler

import (
	"strings"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/schema"
)

// StrategyType represents the type of reconciliation strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the name of the strategy type.
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyTypeFieldAuthority resolves each column by its authority side.
	StrategyTypeFieldAuthority StrategyType = "field-authority"
	// StrategyTypeAppendMissing leaves destination rows alone and only
	// appends unknown source rows.
	StrategyTypeAppendMissing StrategyType = "append-missing"
)

// Strategy defines how reconciliation should be performed.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Preferred returns the side whose non-null value wins for column
	Preferred(column string) authority.Side

	// ApplyStrategy returns which kinds of change reach the output
	ApplyStrategy() differ.ApplyStrategy
}

// baseStrategy provides common strategy functionality.
type baseStrategy struct {
	typ           StrategyType
	description   string
	applyStrategy differ.ApplyStrategy
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// ApplyStrategy returns how changes should be applied.
func (s *baseStrategy) ApplyStrategy() differ.ApplyStrategy {
	return s.applyStrategy
}

// AuthorityStrategy uses column authorities to resolve conflicts.
type AuthorityStrategy struct {
	baseStrategy
	authorities authority.Authority
}

// NewAuthorityStrategy creates a new authority-based strategy. With no
// authorities every column prefers the source.
func NewAuthorityStrategy(authorities authority.Authority) Strategy {
	return &AuthorityStrategy{
		baseStrategy: baseStrategy{
			typ:           StrategyTypeFieldAuthority,
			description:   "Source values win unless null; column authorities may prefer the destination",
			applyStrategy: differ.ApplyAdditive,
		},
		authorities: authorities,
	}
}

// Preferred returns the authority side for column.
func (s *AuthorityStrategy) Preferred(column string) authority.Side {
	return s.authorities.Preferred(column)
}

// AppendMissingStrategy only appends rows with unknown keys.
type AppendMissingStrategy struct {
	baseStrategy
}

// NewAppendMissingStrategy creates a strategy that never updates existing rows.
func NewAppendMissingStrategy() Strategy {
	return &AppendMissingStrategy{
		baseStrategy: baseStrategy{
			typ:           StrategyTypeAppendMissing,
			description:   "Destination rows are kept as-is; only source rows with unknown keys are appended",
			applyStrategy: differ.ApplyAdditionsOnly,
		},
	}
}

// Preferred always returns the destination.
func (s *AppendMissingStrategy) Preferred(string) authority.Side {
	return authority.SideDestination
}

// StrategyFor selects the strategy matching the schema's merge mode.
func StrategyFor(s schema.Schema) Strategy {
	if s.Mode == schema.ModeAppendMissing {
		return NewAppendMissingStrategy()
	}
	return NewAuthorityStrategy(s.Authority())
}
