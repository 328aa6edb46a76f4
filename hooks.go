package eccnsync

import (
	"sync"

	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/records"
)

// Hook function types for row events
type (
	// RowAddedHook is called for each source row appended to a worksheet
	RowAddedHook func(job, key string, rec records.Record)

	// RowUpdatedHook is called for each worksheet row that received source values
	RowUpdatedHook func(job, key string, changes []differ.FieldChange)
)

// Hooks registers callbacks fired after a successful write-back. Dry runs
// and failed writes fire nothing.
type Hooks interface {
	OnRowAdded(fn RowAddedHook)
	OnRowUpdated(fn RowUpdatedHook)
}

// hooks manages event callbacks for written changes
type hooks struct {
	mu           sync.RWMutex
	onRowAdded   []RowAddedHook
	onRowUpdated []RowUpdatedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnRowAdded registers a callback for appended rows
func (h *hooks) OnRowAdded(fn RowAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRowAdded = append(h.onRowAdded, fn)
}

// OnRowUpdated registers a callback for updated rows
func (h *hooks) OnRowUpdated(fn RowUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRowUpdated = append(h.onRowUpdated, fn)
}

// trigger walks a written changeset and calls the registered hooks
func (h *hooks) trigger(job string, cs *differ.Changeset) {
	if cs == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, a := range cs.Added {
		for _, hook := range h.onRowAdded {
			hook(job, a.Key, a.Record)
		}
	}
	for _, u := range cs.Updated {
		for _, hook := range h.onRowUpdated {
			hook(job, u.Key, u.Changes)
		}
	}
}

// OnRowAdded registers a callback for appended rows.
func (c *client) OnRowAdded(fn RowAddedHook) {
	c.hooks.OnRowAdded(fn)
}

// OnRowUpdated registers a callback for updated rows.
func (c *client) OnRowUpdated(fn RowUpdatedHook) {
	c.hooks.OnRowUpdated(fn)
}
