// Package onboard is the two-step flow gating task creation: collect an
// identity, then collect the first task. An explicit state machine with an
// entry guard: a profile that already registered skips straight to the task
// step and is never asked to re-register.
//
// Each step splits into a local check (synchronous, never touches the
// network), a remote submit (blocking, run as async work by the caller), and
// a commit (applied back on the event loop). A failed check or submit leaves
// the machine exactly where it was.
package onboard

import (
	"context"
	"regexp"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/session"
)

// State is the flow's position.
type State int

const (
	// CollectingIdentity asks for full name and email.
	CollectingIdentity State = iota
	// CollectingTask asks for the task fields.
	CollectingTask
	// Done is terminal: the task was submitted.
	Done
)

// emailShape is the local@domain.tld check used before any network call.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// API is the slice of the remote client the flow needs.
type API interface {
	CreateUser(ctx context.Context, fullName, email string) (model.Identity, error)
	CreateTask(ctx context.Context, in api.TaskInput) (model.Task, error)
}

// Flow is one run of the onboarding machine. Cancellation is external: the
// caller just drops the flow, which has no side effect beyond losing the
// in-progress form state.
type Flow struct {
	client  API
	session *session.Session

	state    State
	identity model.Identity
}

// New starts a flow. The entry guard resolves the initial state: with a
// persisted identity the first step is skipped.
func New(client API, sess *session.Session) *Flow {
	f := &Flow{client: client, session: sess, state: CollectingIdentity}
	if id, ok, err := sess.Identity(); err == nil && ok {
		f.identity = id
		f.state = CollectingTask
	}
	return f
}

// State returns the flow's current position.
func (f *Flow) State() State { return f.state }

// Identity returns the resolved identity once the first step has completed
// (or was skipped).
func (f *Flow) Identity() (model.Identity, bool) {
	if f.state == CollectingIdentity {
		return model.Identity{}, false
	}
	return f.identity, true
}

// CheckIdentity validates the identity form locally. A non-empty result
// rejects the transition: no state change, no network call.
func (f *Flow) CheckIdentity(fullName, email string) api.FieldErrors {
	errs := api.FieldErrors{}
	if fullName == "" {
		errs["full_name"] = "Full name is required"
	}
	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailShape.MatchString(email) {
		errs["email"] = "Invalid email address"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// RegisterIdentity calls the remote user-creation endpoint. Blocking; run it
// as async work. The error is either api.FieldErrors (server field errors,
// shown in the form) or a failure the caller maps to a generic message.
func (f *Flow) RegisterIdentity(ctx context.Context, fullName, email string) (model.Identity, error) {
	return f.client.CreateUser(ctx, fullName, email)
}

// CommitIdentity persists the registered identity and advances to the task
// step.
func (f *Flow) CommitIdentity(id model.Identity) error {
	if err := f.session.SetIdentity(id); err != nil {
		return err
	}
	f.identity = id
	f.state = CollectingTask
	return nil
}

// CheckTask validates the task form locally.
func (f *Flow) CheckTask(name, description string, status model.Status) api.FieldErrors {
	errs := api.FieldErrors{}
	if name == "" {
		errs["name"] = "Name is required"
	}
	if description == "" {
		errs["description"] = "Description is required"
	}
	if status == "" {
		errs["status"] = "Status is required"
	} else if !status.Valid() {
		errs["status"] = "Unknown status"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SubmitTask creates the task under the resolved identity. Blocking; run it
// as async work.
func (f *Flow) SubmitTask(ctx context.Context, name, description string, status model.Status) (model.Task, error) {
	return f.client.CreateTask(ctx, api.TaskInput{
		Name:        name,
		Description: description,
		Status:      status,
		UserID:      f.identity.ID,
	})
}

// CommitTask marks the flow done. The caller signals "task added" to the
// list controller by invalidating it.
func (f *Flow) CommitTask() {
	f.state = Done
}
