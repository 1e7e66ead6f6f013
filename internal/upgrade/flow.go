// Package upgrade is the payment protocol granting the unlimited-tasks
// entitlement. One attempt runs strictly in order: the user supplies their
// details, the third-party payment widget collects payment and yields a
// reference, initialization obtains a server-side transaction id, and only
// then is verification possible: Verify lives on the Attempt returned by a
// successful Initialize, so it cannot be called without one. Closing the
// widget before payment is a no-op: without a reference neither call is made.
package upgrade

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/session"
)

// Plan is the only plan offered.
const Plan = "Pro"

// API is the slice of the remote client the flow needs.
type API interface {
	InitializePayment(ctx context.Context, in api.PaymentInit) (string, error)
	VerifyPayment(ctx context.Context, reference, tranID string) (api.VerifyResult, error)
}

// Flow is one upgrade surface. It is recreated each time the surface opens;
// dismissing it discards the form state and nothing else.
type Flow struct {
	client  API
	session *session.Session
	amount  int64
	userID  string

	fullName string
	email    string
}

// New returns a flow for the given user and configured amount.
func New(client API, sess *session.Session, amount int64, userID string) *Flow {
	return &Flow{client: client, session: sess, amount: amount, userID: userID}
}

// SetDetails records the payer details from the form.
func (f *Flow) SetDetails(fullName, email string) {
	f.fullName = strings.TrimSpace(fullName)
	f.email = strings.TrimSpace(email)
}

// Details returns the recorded payer details.
func (f *Flow) Details() (fullName, email string) { return f.fullName, f.email }

// PayEnabled reports whether the payment action is available. Both fields
// are required before the widget may open; the disabled state is part of the
// contract, not presentation.
func (f *Flow) PayEnabled() bool {
	return f.fullName != "" && f.email != ""
}

// NewReference generates a client-side payment reference for the widget.
func NewReference() string { return uuid.NewString() }

// Attempt is one initialized payment attempt. Holding one is proof that
// initialization succeeded and the transaction id exists.
type Attempt struct {
	flow      *Flow
	reference string
	tranID    string
}

// Initialize exchanges a successful widget reference for a server-side
// transaction id. Failure is terminal for this attempt: the reference is not
// reused, no retry happens, and entitlement stays unapproved.
func (f *Flow) Initialize(ctx context.Context, reference string) (*Attempt, error) {
	tranID, err := f.client.InitializePayment(ctx, api.PaymentInit{
		Email:    f.email,
		FullName: f.fullName,
		Amount:   f.amount,
		Plan:     Plan,
		UserID:   f.userID,
	})
	if err != nil {
		return nil, err
	}
	return &Attempt{flow: f, reference: reference, tranID: tranID}, nil
}

// Verify confirms the payment. On failure entitlement stays unapproved and
// the free-task gate still applies.
func (a *Attempt) Verify(ctx context.Context) (api.VerifyResult, error) {
	return a.flow.client.VerifyPayment(ctx, a.reference, a.tranID)
}

// TransactionID returns the server-assigned transaction id.
func (a *Attempt) TransactionID() string { return a.tranID }

// CommitApproval persists the verified approval payload. Call from the event
// loop after a successful Verify; from then on the profile is unlimited.
func (f *Flow) CommitApproval(ent model.Entitlement) error {
	return f.session.RecordApproval(ent)
}
