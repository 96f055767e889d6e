package taskflow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklist-service/internal/model"
	"checklist-service/pkg/rbac"
)

type fakeTaskStore struct {
	nextID     int
	tasks      map[int]*model.Task
	updateErr  error
	reorderErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, tasks: map[int]*model.Task{}}
}

func (f *fakeTaskStore) GetByID(ctx context.Context, taskID int) (*model.Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) CountByProject(ctx context.Context, projectID int) (int, error) {
	n := 0
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTaskStore) Insert(ctx context.Context, task *model.Task) (int, error) {
	id := f.nextID
	f.nextID++
	cp := *task
	cp.ID = id
	f.tasks[id] = &cp
	return id, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *model.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

// ReorderTasks mirrors the repository contract: all positions land or none do.
func (f *fakeTaskStore) ReorderTasks(ctx context.Context, projectID int, status string, orderedIDs []int) error {
	if f.reorderErr != nil {
		return f.reorderErr
	}
	for _, id := range orderedIDs {
		if _, ok := f.tasks[id]; !ok {
			return pgx.ErrNoRows
		}
	}
	for position, id := range orderedIDs {
		f.tasks[id].Order = position
	}
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, taskID int) error {
	delete(f.tasks, taskID)
	return nil
}

type fakeConfigStore struct {
	configs map[int]*model.TaskConfiguration
	inserts int
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{configs: map[int]*model.TaskConfiguration{}}
}

func (f *fakeConfigStore) GetByProject(ctx context.Context, projectID int) (*model.TaskConfiguration, error) {
	cfg, ok := f.configs[projectID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *cfg
	return &cp, nil
}

func (f *fakeConfigStore) Insert(ctx context.Context, cfg *model.TaskConfiguration) (int, error) {
	f.inserts++
	id := len(f.configs) + 1
	cp := *cfg
	cp.ID = id
	f.configs[cfg.ProjectID] = &cp
	return id, nil
}

func (f *fakeConfigStore) Update(ctx context.Context, cfg *model.TaskConfiguration) error {
	cp := *cfg
	f.configs[cfg.ProjectID] = &cp
	return nil
}

func newTestEngine() (*Engine, *fakeTaskStore, *fakeConfigStore) {
	tasks := newFakeTaskStore()
	configs := newFakeConfigStore()
	return NewEngine(tasks, configs, zap.NewNop()), tasks, configs
}

var leader = rbac.Session{Email: "lider@example.com", FullName: "Líder Web", Role: rbac.RoleWebLeader}
var developer = rbac.Session{Email: "dev@example.com", FullName: "Dev", Role: rbac.RoleDeveloper}

func TestConfigurationAutoCreatesDefault(t *testing.T) {
	e, _, configs := newTestEngine()

	cfg, err := e.Configuration(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, configs.inserts)
	assert.True(t, cfg.ModuleEnabled)
	require.Len(t, cfg.Statuses, 3)
	assert.Equal(t, "backlog", cfg.Statuses[0].Key)
	assert.True(t, cfg.HasFinalStatus())
	assert.Len(t, cfg.Priorities, 3)
	assert.Empty(t, cfg.Fields)

	// Second access reuses the stored configuration.
	_, err = e.Configuration(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, configs.inserts)
}

func TestCreateTaskDefaultsStatusAndPriority(t *testing.T) {
	e, _, _ := newTestEngine()

	task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "Revisar textos"})
	require.NoError(t, err)

	assert.Equal(t, "backlog", task.Status)
	assert.Equal(t, "medium", task.Priority)
	assert.Equal(t, 0, task.Order)

	second, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "Otra tarea"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	e, _, _ := newTestEngine()

	_, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	e, _, _ := newTestEngine()

	_, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "x", Status: "shipped"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
}

func TestCreateTaskHonorsPermissionMatrix(t *testing.T) {
	e, _, configs := newTestEngine()

	cfg := DefaultConfiguration(1)
	cfg.Permissions[rbac.RoleDeveloper] = model.TaskPermissions{CanCreate: false}
	_, err := configs.Insert(context.Background(), cfg)
	require.NoError(t, err)

	_, err = e.CreateTask(context.Background(), developer, 1, CreateTaskInput{Title: "x"})

	var perr *BoardPermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Operation)
}

func TestMoveTaskToFinalStatusRequiresFields(t *testing.T) {
	e, _, configs := newTestEngine()

	cfg := DefaultConfiguration(1)
	cfg.Fields = []model.FieldDef{
		{Key: "review_url", Label: "URL de revisión", Type: model.FieldText, Required: true},
		{Key: "approved", Label: "Aprobada", Type: model.FieldCheckbox, Required: true},
		{Key: "notes", Label: "Notas", Type: model.FieldTextarea},
	}
	_, err := configs.Insert(context.Background(), cfg)
	require.NoError(t, err)

	task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "Entrega"})
	require.NoError(t, err)

	// Both required fields missing: the move names every one of them.
	_, err = e.MoveTask(context.Background(), leader, task.ID, "done")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"review_url", "approved"}, verr.Fields)

	// One filled is still all-or-nothing.
	_, err = e.UpdateTask(context.Background(), leader, task.ID, UpdateTaskInput{
		CustomFields: map[string]interface{}{"review_url": "https://example.com/r/1"},
	})
	require.NoError(t, err)
	_, err = e.MoveTask(context.Background(), leader, task.ID, "done")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"approved"}, verr.Fields)

	// All filled: the move lands and stamps completion.
	_, err = e.UpdateTask(context.Background(), leader, task.ID, UpdateTaskInput{
		CustomFields: map[string]interface{}{"approved": true},
	})
	require.NoError(t, err)
	moved, err := e.MoveTask(context.Background(), leader, task.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, "done", moved.Status)
	assert.Equal(t, leader.FullName, moved.CompletedBy)
	require.NotNil(t, moved.CompletedAt)
}

func TestMoveTaskToNonFinalSkipsFieldCheck(t *testing.T) {
	e, _, configs := newTestEngine()

	cfg := DefaultConfiguration(1)
	cfg.Fields = []model.FieldDef{
		{Key: "review_url", Type: model.FieldText, Required: true},
	}
	_, err := configs.Insert(context.Background(), cfg)
	require.NoError(t, err)

	task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "WIP"})
	require.NoError(t, err)

	moved, err := e.MoveTask(context.Background(), leader, task.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", moved.Status)
	assert.Empty(t, moved.CompletedBy)
}

func TestMoveTaskRollsBackOnStoreFailure(t *testing.T) {
	e, tasks, _ := newTestEngine()

	task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "Frágil"})
	require.NoError(t, err)

	tasks.updateErr = errors.New("connection reset")
	_, err = e.MoveTask(context.Background(), leader, task.ID, "in_progress")

	var rerr *ReconciliationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, task.ID, rerr.TaskID)

	// The cached view reverted to the pre-move snapshot.
	cached, ok := e.cache.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "backlog", cached.Status)

	// The store never saw the move either.
	stored, err := tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "backlog", stored.Status)
}

func TestReorderWithinStatusAssignsIndexOrder(t *testing.T) {
	e, tasks, _ := newTestEngine()

	var ids []int
	for _, title := range []string{"a", "b", "c"} {
		task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	// Reverse the column.
	err := e.ReorderWithinStatus(context.Background(), leader, 1, "backlog", []int{ids[2], ids[1], ids[0]})
	require.NoError(t, err)

	for i, id := range []int{ids[2], ids[1], ids[0]} {
		stored, err := tasks.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, i, stored.Order)
	}
}

func TestReorderWithinStatusFailureLeavesColumnIntact(t *testing.T) {
	e, tasks, _ := newTestEngine()

	var ids []int
	for _, title := range []string{"a", "b", "c"} {
		task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	tasks.reorderErr = errors.New("connection reset")
	err := e.ReorderWithinStatus(context.Background(), leader, 1, "backlog", []int{ids[2], ids[1], ids[0]})
	require.Error(t, err)

	// Neither the store nor the cache saw a partial reorder.
	for i, id := range ids {
		stored, err := tasks.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, i, stored.Order)

		cached, ok := e.cache.Get(id)
		require.True(t, ok)
		assert.Equal(t, i, cached.Order)
	}
}

func TestUpdateConfigurationRejectsEmptyStatuses(t *testing.T) {
	e, _, configs := newTestEngine()

	_, err := e.Configuration(context.Background(), 1)
	require.NoError(t, err)

	empty := []model.StatusDef{}
	_, err = e.UpdateConfiguration(context.Background(), leader, 1, ConfigPatch{Statuses: &empty})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// The stored configuration stayed intact.
	stored, err := configs.GetByProject(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stored.Statuses, 3)
}

func TestUpdateConfigurationRequiresFinalStatus(t *testing.T) {
	e, _, _ := newTestEngine()

	noFinal := []model.StatusDef{
		{Key: "todo", Label: "Por hacer"},
		{Key: "doing", Label: "Haciendo"},
	}
	_, err := e.UpdateConfiguration(context.Background(), leader, 1, ConfigPatch{Statuses: &noFinal})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "final")
}

func TestUpdateConfigurationOnlyLeaderRoles(t *testing.T) {
	e, _, _ := newTestEngine()

	enabled := false
	_, err := e.UpdateConfiguration(context.Background(), developer, 1, ConfigPatch{ModuleEnabled: &enabled})

	var perr *BoardPermissionError
	require.ErrorAs(t, err, &perr)
}

func TestUpdateConfigurationReplacesStatuses(t *testing.T) {
	e, _, _ := newTestEngine()

	statuses := []model.StatusDef{
		{Key: "triage", Label: "Triaje"},
		{Key: "review", Label: "Revisión"},
		{Key: "shipped", Label: "Entregada", IsFinal: true},
	}
	cfg, err := e.UpdateConfiguration(context.Background(), leader, 1, ConfigPatch{Statuses: &statuses})
	require.NoError(t, err)
	assert.Equal(t, statuses, cfg.Statuses)

	// New tasks land on the first status of the replaced set.
	task, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "triage", task.Status)
}

func TestCreateTaskValidatesCustomFieldTypes(t *testing.T) {
	e, _, configs := newTestEngine()

	cfg := DefaultConfiguration(1)
	cfg.Fields = []model.FieldDef{
		{Key: "effort", Type: model.FieldNumber},
		{Key: "env", Type: model.FieldSelect, Options: []string{"staging", "production"}},
		{Key: "deadline", Type: model.FieldDate},
	}
	_, err := configs.Insert(context.Background(), cfg)
	require.NoError(t, err)

	cases := []struct {
		name   string
		fields map[string]interface{}
		ok     bool
	}{
		{"valid number", map[string]interface{}{"effort": float64(3)}, true},
		{"text as number", map[string]interface{}{"effort": "three"}, false},
		{"valid option", map[string]interface{}{"env": "staging"}, true},
		{"unknown option", map[string]interface{}{"env": "qa"}, false},
		{"date day layout", map[string]interface{}{"deadline": "2026-04-01"}, true},
		{"garbage date", map[string]interface{}{"deadline": "mañana"}, false},
		{"undefined key", map[string]interface{}{"ghost": 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "x", CustomFields: tc.fields})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestBoardGroupsTasksByStatus(t *testing.T) {
	e, _, _ := newTestEngine()

	a, err := e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "a"})
	require.NoError(t, err)
	_, err = e.CreateTask(context.Background(), leader, 1, CreateTaskInput{Title: "b"})
	require.NoError(t, err)
	_, err = e.MoveTask(context.Background(), leader, a.ID, "in_progress")
	require.NoError(t, err)

	cfg, columns, err := e.Board(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, cfg.Statuses, 3)
	assert.Len(t, columns["backlog"], 1)
	assert.Len(t, columns["in_progress"], 1)
	assert.Empty(t, columns["done"])
}

func TestMutationLifecycleStates(t *testing.T) {
	cache := NewBoardCache()
	cache.Put(model.Task{ID: 1, Status: "backlog"})

	mut := cache.Stage(model.Task{ID: 1, Status: "done"})
	assert.Equal(t, MutationPending, mut.State())

	staged, _ := cache.Get(1)
	assert.Equal(t, "done", staged.Status)

	mut.Rollback()
	assert.Equal(t, MutationRolledBack, mut.State())
	reverted, _ := cache.Get(1)
	assert.Equal(t, "backlog", reverted.Status)

	// A settled mutation cannot change state again.
	mut.Commit()
	assert.Equal(t, MutationRolledBack, mut.State())
}

func TestStageNewTaskRollbackRemovesIt(t *testing.T) {
	cache := NewBoardCache()

	mut := cache.Stage(model.Task{ID: 9, Status: "backlog"})
	_, ok := cache.Get(9)
	require.True(t, ok)

	mut.Rollback()
	_, ok = cache.Get(9)
	assert.False(t, ok)
}
