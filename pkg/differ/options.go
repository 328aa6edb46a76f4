package differ

import "github.com/agentstation/eccnsync/pkg/authority"

// Option is a functional option for configuring Differ.
type Option func(*differ)

// WithIgnoredColumns sets columns to ignore during comparison.
func WithIgnoredColumns(columns ...string) Option {
	return func(d *differ) {
		for _, c := range columns {
			d.ignoreColumns[c] = true
		}
	}
}

// WithSides annotates changes with the side that supplied each column.
func WithSides(sides map[string]authority.Side) Option {
	return func(d *differ) {
		for c, s := range sides {
			d.sides[c] = s
		}
	}
}
