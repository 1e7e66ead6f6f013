package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
)

type fakeAPI struct {
	tasks     []model.Task
	listErr   error
	listCalls int
	lastQuery api.ListQuery

	deleteErr error
	deleted   []string
}

func (f *fakeAPI) ListTasks(_ context.Context, q api.ListQuery) ([]model.Task, error) {
	f.listCalls++
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeEntitlements struct{ unlimited bool }

func (f fakeEntitlements) IsUnlimited() bool { return f.unlimited }

func makeTasks(n int) []model.Task {
	out := make([]model.Task, n)
	for i := range out {
		out[i] = model.Task{
			ID:     fmt.Sprintf("t-%d", i),
			Name:   fmt.Sprintf("Task %d", i),
			Status: model.StatusPending,
		}
	}
	return out
}

// loaded returns a controller with an identity resolved and the fake's tasks
// committed.
func loaded(t *testing.T, f *fakeAPI, unlimited bool) *Controller {
	t.Helper()
	c := NewController(f, fakeEntitlements{unlimited: unlimited})
	spec := c.SetIdentity(model.Identity{ID: "u-1", FullName: "Ada", Email: "ada@example.com"})
	require.True(t, c.Commit(c.Fetch(context.Background(), spec)))
	return c
}

func TestNoIdentityMeansNoFetch(t *testing.T) {
	f := &fakeAPI{}
	c := NewController(f, fakeEntitlements{})

	_, ok := c.SetFilter(model.Filter{Name: "x"})
	assert.False(t, ok)
	_, ok = c.Invalidate("anything")
	assert.False(t, ok)
	assert.Zero(t, f.listCalls)
}

func TestResolveIdentityIssuesFetchForUser(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(2)}
	c := loaded(t, f, false)

	assert.Equal(t, 1, f.listCalls)
	assert.Equal(t, "u-1", f.lastQuery.UserID)
	assert.Equal(t, 2, c.Count())
	assert.False(t, c.Loading())
}

func TestFreeTierGateExactAtLimit(t *testing.T) {
	for n := 0; n <= 8; n++ {
		f := &fakeAPI{tasks: makeTasks(n)}
		c := loaded(t, f, false)

		want := AddAllowed
		if n >= FreeLimit {
			want = AddUpgrade
		}
		assert.Equalf(t, want, c.AddTask(), "count=%d", n)
		assert.Equalf(t, n >= FreeLimit, c.AtFreeLimit(), "count=%d", n)
	}
}

func TestUnlimitedNeverGated(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(20)}
	c := loaded(t, f, true)

	assert.Equal(t, AddAllowed, c.AddTask())
	assert.False(t, c.AtFreeLimit())
}

func TestFilterSecondPass(t *testing.T) {
	day := time.Date(2026, 8, 30, 15, 4, 0, 0, time.UTC)
	src := []model.Task{
		{ID: "1", Name: "Buy milk", Description: "from the corner shop", Status: model.StatusPending, CreatedAt: day},
		{ID: "2", Name: "Taxes", Description: "file the MILK invoice", Status: model.StatusCompleted, CreatedAt: day.AddDate(0, 0, -1)},
		{ID: "3", Name: "Gym", Description: "leg day", Status: model.StatusCompleted, CreatedAt: day},
	}

	tests := []struct {
		name   string
		filter model.Filter
		want   []string
	}{
		{"no filter", model.Filter{}, []string{"1", "2", "3"}},
		{"name matches name or description, case-insensitive", model.Filter{Name: "milk"}, []string{"1", "2"}},
		{"status equality", model.Filter{Status: model.StatusCompleted}, []string{"2", "3"}},
		{"date equality at day granularity", model.Filter{Date: "2026-08-30"}, []string{"1", "3"}},
		{"all together", model.Filter{Name: "milk", Status: model.StatusCompleted, Date: "2026-08-29"}, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{tasks: src}
			c := loaded(t, f, true)
			spec, ok := c.SetFilter(tt.filter)
			require.True(t, ok)
			require.True(t, c.Commit(c.Fetch(context.Background(), spec)))

			got := make([]string, 0)
			for _, task := range c.Visible() {
				got = append(got, task.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterIdempotentAndNonMutating(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(4)}
	c := loaded(t, f, true)

	spec, ok := c.SetFilter(model.Filter{Name: "task 1"})
	require.True(t, ok)
	require.True(t, c.Commit(c.Fetch(context.Background(), spec)))

	first := c.Visible()
	second := c.Visible()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("same filter, different sequence (-first +second):\n%s", diff)
	}
	assert.Equal(t, 4, c.Count(), "source collection must not shrink under filtering")
}

func TestStatusFilterScenario(t *testing.T) {
	f := &fakeAPI{tasks: []model.Task{
		{ID: "1", Name: "a", Status: model.StatusPending},
		{ID: "2", Name: "b", Status: model.StatusCompleted},
	}}
	c := loaded(t, f, true)

	spec, ok := c.SetFilter(model.Filter{Status: model.StatusCompleted})
	require.True(t, ok)
	require.True(t, c.Commit(c.Fetch(context.Background(), spec)))
	assert.Len(t, c.Visible(), 1)
}

func TestFirstTaskScenario(t *testing.T) {
	f := &fakeAPI{}
	c := loaded(t, f, false)
	require.Zero(t, c.Count())
	assert.Equal(t, AddAllowed, c.AddTask())

	// the add flow created the task remotely; the refresh brings it back
	f.tasks = []model.Task{{ID: "t-1", Name: "A", Description: "d", Status: model.StatusPending}}
	spec, ok := c.Invalidate("task added")
	require.True(t, ok)
	require.True(t, c.Commit(c.Fetch(context.Background(), spec)))

	visible := c.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Pending", visible[0].Status.Label())
}

func TestStaleFetchIsDropped(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(1)}
	c := loaded(t, f, true)

	// issue two fetches; resolve the newer one first
	oldSpec, ok := c.SetFilter(model.Filter{Name: "old"})
	require.True(t, ok)
	f.tasks = makeTasks(3)
	newSpec, ok := c.SetFilter(model.Filter{})
	require.True(t, ok)

	newRes := c.Fetch(context.Background(), newSpec)
	f.tasks = makeTasks(9)
	oldRes := c.Fetch(context.Background(), oldSpec)

	require.True(t, c.Commit(newRes))
	assert.Equal(t, 3, c.Count())
	assert.False(t, c.Loading())

	// the slow early fetch must not overwrite the later result
	assert.False(t, c.Commit(oldRes))
	assert.Equal(t, 3, c.Count())
}

func TestStaleFetchDoesNotClearLoading(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(1)}
	c := loaded(t, f, true)

	oldSpec, ok := c.SetFilter(model.Filter{Name: "old"})
	require.True(t, ok)
	oldRes := c.Fetch(context.Background(), oldSpec)

	_, ok = c.SetFilter(model.Filter{})
	require.True(t, ok)
	require.True(t, c.Loading(), "newer fetch still in flight")

	assert.False(t, c.Commit(oldRes))
	assert.True(t, c.Loading(), "stale commit must not clear the newer fetch's loading state")
}

func TestFetchErrorSurfacesBanner(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(2)}
	c := loaded(t, f, true)

	f.listErr = errors.New("boom")
	spec, ok := c.Invalidate("refresh")
	require.True(t, ok)
	require.True(t, c.Commit(c.Fetch(context.Background(), spec)))

	assert.NotEmpty(t, c.Err())
	assert.False(t, c.Loading())
}

func TestDeleteIsOptimistic(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(3)}
	c := loaded(t, f, true)

	err := c.Delete(context.Background(), "t-1")
	_, ok := c.CommitDelete("t-1", err)
	require.True(t, ok)

	// removed locally without a re-fetch
	assert.Equal(t, 1, f.listCalls)
	assert.Equal(t, 2, c.Count())
	for _, task := range c.Visible() {
		assert.NotEqual(t, "t-1", task.ID)
	}
}

func TestFailedDeleteLeavesCollectionUntouched(t *testing.T) {
	f := &fakeAPI{tasks: makeTasks(3)}
	c := loaded(t, f, true)

	f.deleteErr = errors.New("boom")
	err := c.Delete(context.Background(), "t-1")
	notice, ok := c.CommitDelete("t-1", err)
	assert.False(t, ok)
	assert.NotEmpty(t, notice)

	assert.Equal(t, 3, c.Count())
	found := false
	for _, task := range c.Visible() {
		if task.ID == "t-1" {
			found = true
		}
	}
	assert.True(t, found, "t-1 must still be present after a failed delete")
}

func TestFilterPropagatesToServerQuery(t *testing.T) {
	f := &fakeAPI{}
	c := loaded(t, f, true)

	spec, ok := c.SetFilter(model.Filter{Name: "milk", Status: model.StatusPending, Date: "2026-08-30"})
	require.True(t, ok)
	c.Fetch(context.Background(), spec)

	assert.Equal(t, "milk", f.lastQuery.Search)
	assert.Equal(t, model.StatusPending, f.lastQuery.Status)
	assert.Equal(t, "2026-08-30", f.lastQuery.Date)
	assert.Equal(t, "u-1", f.lastQuery.UserID)
}
