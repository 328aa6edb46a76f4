package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/keys"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/schema"
)

func TestStrategyTypeName(t *testing.T) {
	assert.Equal(t, "Field Authority", StrategyTypeFieldAuthority.Name())
	assert.Equal(t, "Append Missing", StrategyTypeAppendMissing.Name())
}

func TestStrategyFor(t *testing.T) {
	s := schema.Schema{Columns: []string{"a"}, Key: keys.Single("a")}
	assert.Equal(t, StrategyTypeFieldAuthority, StrategyFor(s).Type())
	assert.Equal(t, differ.ApplyAdditive, StrategyFor(s).ApplyStrategy())

	s.Mode = schema.ModeAppendMissing
	assert.Equal(t, StrategyTypeAppendMissing, StrategyFor(s).Type())
	assert.Equal(t, differ.ApplyAdditionsOnly, StrategyFor(s).ApplyStrategy())
}

func TestResolve(t *testing.T) {
	src, dst := records.String("s"), records.String("d")

	v, side := resolve(authority.SideSource, src, dst)
	assert.Equal(t, src, v)
	assert.Equal(t, authority.SideSource, side)

	v, side = resolve(authority.SideSource, records.Null(), dst)
	assert.Equal(t, dst, v)
	assert.Equal(t, authority.SideDestination, side)

	v, side = resolve(authority.SideDestination, src, dst)
	assert.Equal(t, dst, v)
	assert.Equal(t, authority.SideDestination, side)

	v, _ = resolve(authority.SideSource, records.Null(), records.Null())
	assert.True(t, v.IsNull())
}

func TestSides(t *testing.T) {
	s := schema.Schema{
		Columns:     []string{"a", "Remarks"},
		Key:         keys.Single("a"),
		Authorities: []authority.Field{{Column: "Rem*", Side: authority.SideDestination}},
	}
	sides := Sides(s, StrategyFor(s))
	assert.Equal(t, authority.SideSource, sides["a"])
	assert.Equal(t, authority.SideDestination, sides["Remarks"])
}
