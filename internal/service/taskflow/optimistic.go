package taskflow

import (
	"sync"

	"checklist-service/internal/model"
)

// MutationState tracks the lifecycle of an optimistic board mutation.
type MutationState string

const (
	MutationPending    MutationState = "pending"
	MutationCommitted  MutationState = "committed"
	MutationRolledBack MutationState = "rolled_back"
)

// BoardCache holds the in-memory view of board tasks that readers see while a
// mutation is in flight. Mutations apply to the cache immediately and either
// commit when the store confirms them or roll back to the pre-mutation
// snapshot when it does not. Concurrent writers are resolved last-write-wins.
type BoardCache struct {
	mu    sync.RWMutex
	tasks map[int]model.Task
}

func NewBoardCache() *BoardCache {
	return &BoardCache{tasks: make(map[int]model.Task)}
}

// Mutation is one staged change against the cache. It keeps the snapshot taken
// before the change was applied so a failed store write can be undone.
type Mutation struct {
	cache   *BoardCache
	taskID  int
	before  model.Task
	existed bool
	state   MutationState
	stateMu sync.Mutex
}

// Get returns the cached view of a task.
func (c *BoardCache) Get(taskID int) (model.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tasks[taskID]
	return copyTask(t), ok
}

// Put stores a confirmed task view, outside any mutation lifecycle. Used when
// hydrating the cache from store reads.
func (c *BoardCache) Put(task model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[task.ID] = copyTask(task)
}

// Remove drops a task from the cache after a confirmed delete.
func (c *BoardCache) Remove(taskID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tasks, taskID)
}

// Stage snapshots the current cached state of the task and applies the updated
// view optimistically. The returned mutation is Pending until Commit or
// Rollback is called.
func (c *BoardCache) Stage(updated model.Task) *Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()

	before, existed := c.tasks[updated.ID]
	m := &Mutation{
		cache:   c,
		taskID:  updated.ID,
		before:  copyTask(before),
		existed: existed,
		state:   MutationPending,
	}
	c.tasks[updated.ID] = copyTask(updated)
	return m
}

// State returns the mutation's current lifecycle state.
func (m *Mutation) State() MutationState {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state
}

// Commit marks the optimistic change as confirmed by the store. The cache
// already holds the new view, so nothing else moves.
func (m *Mutation) Commit() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.state != MutationPending {
		return
	}
	m.state = MutationCommitted
}

// Rollback restores the pre-mutation snapshot into the cache. A later writer
// may have overwritten the entry already; last-write-wins means the rollback
// still applies its own snapshot, accepting that the later write is lost.
func (m *Mutation) Rollback() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.state != MutationPending {
		return
	}
	m.state = MutationRolledBack

	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()
	if m.existed {
		m.cache.tasks[m.taskID] = copyTask(m.before)
	} else {
		delete(m.cache.tasks, m.taskID)
	}
}

// copyTask deep-copies the mutable parts of a task so cache entries never
// share the custom-field map with callers.
func copyTask(t model.Task) model.Task {
	out := t
	if t.CustomFields != nil {
		out.CustomFields = make(map[string]interface{}, len(t.CustomFields))
		for k, v := range t.CustomFields {
			out.CustomFields[k] = v
		}
	}
	return out
}
