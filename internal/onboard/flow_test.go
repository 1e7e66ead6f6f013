package onboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/session"
	"github.com/chukwudi34/task-manager/internal/store/jsonstore"
)

type fakeAPI struct {
	createUserErr   error
	createUserCalls int
	createTaskErr   error
	lastTask        api.TaskInput
}

func (f *fakeAPI) CreateUser(_ context.Context, fullName, email string) (model.Identity, error) {
	f.createUserCalls++
	if f.createUserErr != nil {
		return model.Identity{}, f.createUserErr
	}
	return model.Identity{ID: "u-9", FullName: fullName, Email: email}, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, in api.TaskInput) (model.Task, error) {
	f.lastTask = in
	if f.createTaskErr != nil {
		return model.Task{}, f.createTaskErr
	}
	return model.Task{ID: "t-1", Name: in.Name, Description: in.Description, Status: in.Status, UserID: in.UserID}, nil
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(jsonstore.New(t.TempDir()))
}

func TestEntryGuardWithoutIdentity(t *testing.T) {
	f := New(&fakeAPI{}, newSession(t))
	assert.Equal(t, CollectingIdentity, f.State())

	_, ok := f.Identity()
	assert.False(t, ok)
}

func TestEntryGuardSkipsRegistrationWhenIdentityExists(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SetIdentity(model.Identity{ID: "u-1", FullName: "Ada", Email: "ada@example.com"}))

	f := New(&fakeAPI{}, sess)
	assert.Equal(t, CollectingTask, f.State())

	id, ok := f.Identity()
	require.True(t, ok)
	assert.Equal(t, "u-1", id.ID)
}

func TestCheckIdentityValidation(t *testing.T) {
	f := New(&fakeAPI{}, newSession(t))

	tests := []struct {
		name     string
		fullName string
		email    string
		fields   []string
	}{
		{"both empty", "", "", []string{"full_name", "email"}},
		{"missing name", "", "ada@example.com", []string{"full_name"}},
		{"missing email", "Ada", "", []string{"email"}},
		{"email without domain", "Ada", "ada@", []string{"email"}},
		{"email without tld", "Ada", "ada@example", []string{"email"}},
		{"email with spaces", "Ada", "ada lovelace@example.com", []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := f.CheckIdentity(tt.fullName, tt.email)
			require.NotNil(t, errs)
			for _, field := range tt.fields {
				assert.Contains(t, errs, field)
			}
		})
	}

	assert.Nil(t, f.CheckIdentity("Ada Lovelace", "ada@example.com"))
}

func TestValidationFailureMakesNoNetworkCall(t *testing.T) {
	fake := &fakeAPI{}
	f := New(fake, newSession(t))

	require.NotNil(t, f.CheckIdentity("", "not-an-email"))
	assert.Equal(t, CollectingIdentity, f.State())
	assert.Zero(t, fake.createUserCalls, "rejected transition must not reach the network")
}

func TestRegisterAndCommitIdentity(t *testing.T) {
	fake := &fakeAPI{}
	sess := newSession(t)
	f := New(fake, sess)

	id, err := f.RegisterIdentity(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, f.CommitIdentity(id))

	assert.Equal(t, CollectingTask, f.State())

	// identity persisted for future sessions
	stored, ok, err := sess.Identity()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u-9", stored.ID)
}

func TestRemoteFieldErrorsLeaveStateUnchanged(t *testing.T) {
	fake := &fakeAPI{createUserErr: api.FieldErrors{"email": "Email already taken"}}
	sess := newSession(t)
	f := New(fake, sess)

	_, err := f.RegisterIdentity(context.Background(), "Ada", "ada@example.com")
	require.Error(t, err)

	fe, ok := api.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Email already taken", fe["email"])

	assert.Equal(t, CollectingIdentity, f.State())
	_, found, _ := sess.Identity()
	assert.False(t, found, "no identity may be persisted on a failed registration")
}

func TestCheckTaskValidation(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SetIdentity(model.Identity{ID: "u-1", FullName: "A", Email: "a@b.co"}))
	f := New(&fakeAPI{}, sess)

	errs := f.CheckTask("", "", "")
	require.NotNil(t, errs)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "status")

	errs = f.CheckTask("A", "d", "bogus")
	require.NotNil(t, errs)
	assert.Contains(t, errs, "status")

	assert.Nil(t, f.CheckTask("A", "d", model.StatusPending))
}

func TestSubmitTaskUsesResolvedIdentity(t *testing.T) {
	fake := &fakeAPI{}
	sess := newSession(t)
	require.NoError(t, sess.SetIdentity(model.Identity{ID: "u-1", FullName: "A", Email: "a@b.co"}))
	f := New(fake, sess)

	_, err := f.SubmitTask(context.Background(), "A", "d", model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, "u-1", fake.lastTask.UserID)

	f.CommitTask()
	assert.Equal(t, Done, f.State())
}

func TestFailedSubmitStaysInTaskStep(t *testing.T) {
	fake := &fakeAPI{createTaskErr: api.FieldErrors{"name": "Name already exists"}}
	sess := newSession(t)
	require.NoError(t, sess.SetIdentity(model.Identity{ID: "u-1", FullName: "A", Email: "a@b.co"}))
	f := New(fake, sess)

	_, err := f.SubmitTask(context.Background(), "A", "d", model.StatusPending)
	require.Error(t, err)
	assert.Equal(t, CollectingTask, f.State())
}
