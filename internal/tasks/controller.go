// Package tasks holds the task list controller: it resolves the active
// identity, fetches the filtered task collection from the remote API, applies
// the client-side second filter pass, gates the add action behind the free
// limit, and owns the optimistic delete.
//
// The controller is written for a single event loop. State-mutating methods
// (SetFilter, Invalidate, Commit*, ...) must be called from that loop; Fetch
// and Delete are the blocking remote halves and run wherever the loop runs
// its async work. Every fetch carries a generation number, and results from a
// generation older than the latest issued one are dropped at commit time, so
// a slow early request can never overwrite a later one.
package tasks

import (
	"context"
	"strings"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/session"
)

// FreeLimit is the number of tasks a non-upgraded profile may hold.
const FreeLimit = 5

// TaskAPI is the slice of the remote client the controller needs.
type TaskAPI interface {
	ListTasks(ctx context.Context, q api.ListQuery) ([]model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Entitlements reports whether the profile has the unlimited plan.
type Entitlements interface {
	IsUnlimited() bool
}

// AddAction is what pressing "add task" should open.
type AddAction int

const (
	// AddAllowed opens the add surface (onboarding registers an identity
	// first when none exists).
	AddAllowed AddAction = iota
	// AddUpgrade means the free limit is reached: show the upgrade surface,
	// not the add surface.
	AddUpgrade
)

// FetchSpec identifies one fetch: the query to run and the generation that
// guards its result.
type FetchSpec struct {
	Gen   uint64
	Query api.ListQuery
}

// FetchResult pairs a fetch outcome with the generation that produced it.
type FetchResult struct {
	Gen   uint64
	Tasks []model.Task
	Err   error
}

// Controller composes the identity store, the task repository client, and the
// entitlement tracker.
type Controller struct {
	client       TaskAPI
	entitlements Entitlements

	identity    model.Identity
	hasIdentity bool

	filter  model.Filter
	tasks   []model.Task
	gen     uint64 // latest issued fetch generation
	loading bool
	lastErr string
}

// NewController returns a controller with no resolved identity and an empty
// collection.
func NewController(client TaskAPI, ent Entitlements) *Controller {
	return &Controller{client: client, entitlements: ent}
}

// ResolveIdentity installs the active identity and issues the initial fetch.
// Without a resolved identity the controller never fetches, so callers that
// have none simply never get a spec.
func (c *Controller) ResolveIdentity(s *session.Session) (FetchSpec, bool) {
	id, ok, err := s.Identity()
	if err != nil || !ok {
		return FetchSpec{}, false
	}
	return c.SetIdentity(id), true
}

// SetIdentity installs id directly (used when onboarding just registered it)
// and issues a fetch.
func (c *Controller) SetIdentity(id model.Identity) FetchSpec {
	c.identity = id
	c.hasIdentity = true
	return c.nextFetch()
}

// HasIdentity reports whether an identity is resolved.
func (c *Controller) HasIdentity() bool { return c.hasIdentity }

// Identity returns the resolved identity. Only meaningful when HasIdentity.
func (c *Controller) Identity() model.Identity { return c.identity }

// SetFilter installs a new filter and issues a fetch. Returns false when no
// identity is resolved yet.
func (c *Controller) SetFilter(f model.Filter) (FetchSpec, bool) {
	c.filter = f
	if !c.hasIdentity {
		return FetchSpec{}, false
	}
	return c.nextFetch(), true
}

// Filter returns the current filter.
func (c *Controller) Filter() model.Filter { return c.filter }

// Invalidate signals that the cached collection is stale (a task was added or
// edited elsewhere) and issues a re-fetch. This is the only mechanism other
// flows use; there is no push model.
func (c *Controller) Invalidate(reason string) (FetchSpec, bool) {
	_ = reason // kept for call-site readability; all reasons re-fetch
	if !c.hasIdentity {
		return FetchSpec{}, false
	}
	return c.nextFetch(), true
}

func (c *Controller) nextFetch() FetchSpec {
	c.gen++
	c.loading = true
	c.lastErr = ""
	return FetchSpec{
		Gen: c.gen,
		Query: api.ListQuery{
			Search: c.filter.Name,
			Status: c.filter.Status,
			Date:   c.filter.Date,
			UserID: c.identity.ID,
		},
	}
}

// Fetch runs the remote half of a fetch. Safe to call off the event loop.
func (c *Controller) Fetch(ctx context.Context, spec FetchSpec) FetchResult {
	tasks, err := c.client.ListTasks(ctx, spec.Query)
	return FetchResult{Gen: spec.Gen, Tasks: tasks, Err: err}
}

// Commit applies a fetch result. Stale results (an older generation than the
// latest issued) are dropped entirely: they neither replace the collection
// nor clear the loading flag of the fetch still in flight. Returns whether
// the result was applied.
func (c *Controller) Commit(res FetchResult) bool {
	if res.Gen != c.gen {
		return false
	}
	c.loading = false
	if res.Err != nil {
		c.lastErr = "Failed to load tasks."
		return true
	}
	c.tasks = res.Tasks
	c.lastErr = ""
	return true
}

// Loading reports whether the latest issued fetch is still in flight.
func (c *Controller) Loading() bool { return c.loading }

// Err returns the list-level error banner text, empty when none.
func (c *Controller) Err() string { return c.lastErr }

// Count returns the size of the fetched collection, before the second filter
// pass. The free-tier gate counts real tasks, not visible ones.
func (c *Controller) Count() int { return len(c.tasks) }

// Visible applies the client-side second filter pass and returns the
// sequence to render. The source collection is never mutated, so the same
// filter always yields the same sequence.
func (c *Controller) Visible() []model.Task {
	out := make([]model.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if matches(t, c.filter) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t model.Task, f model.Filter) bool {
	if f.Name != "" {
		term := strings.ToLower(f.Name)
		if !strings.Contains(strings.ToLower(t.Name), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Date != "" && t.CreatedDay() != f.Date {
		return false
	}
	return true
}

// AtFreeLimit reports whether the free banner and upgrade prompt apply.
func (c *Controller) AtFreeLimit() bool {
	return !c.entitlements.IsUnlimited() && len(c.tasks) >= FreeLimit
}

// AddTask decides what pressing "add" opens: the add surface, or the upgrade
// surface when the free limit is reached. An unlimited profile always adds.
func (c *Controller) AddTask() AddAction {
	if c.AtFreeLimit() {
		return AddUpgrade
	}
	return AddAllowed
}

// Delete runs the remote delete. Safe to call off the event loop.
func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.client.DeleteTask(ctx, id)
}

// CommitDelete applies a delete outcome. Success removes the task from the
// in-memory collection without a re-fetch; failure leaves the collection
// untouched and returns the message to surface.
func (c *Controller) CommitDelete(id string, err error) (notice string, ok bool) {
	if err != nil {
		return "Failed to delete task.", false
	}
	kept := c.tasks[:0:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	return "Task has been deleted.", true
}
