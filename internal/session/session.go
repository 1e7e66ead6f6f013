// Package session is the process-wide session context: the locally persisted
// identity and the paid-plan entitlement record. It is created once at startup
// and injected into every component that needs the active user or the
// unlimited flag, so no other code touches the cache directly.
//
// Writes are partitioned by owner: onboarding writes the identity, the upgrade
// flow writes the entitlement. The two records live under separate keys and
// never overwrite each other. Concurrent processes sharing the same data dir
// are last-write-wins; that matches the cache's documented semantics.
package session

import (
	"fmt"

	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/store/jsonstore"
)

// Cache keys. identityKey holds the identity wrapped in a {"data": ...}
// envelope, the shape the registration endpoint responds with and the shape
// earlier releases cached verbatim. entitlementKey holds a bare record.
const (
	identityKey    = "taskUser"
	entitlementKey = "pro_transaction"
)

// identityRecord is the on-disk envelope for the identity.
type identityRecord struct {
	Data model.Identity `json:"data"`
}

// Session exposes typed accessors over the local cache.
type Session struct {
	store *jsonstore.Store
}

// New returns a session backed by store.
func New(store *jsonstore.Store) *Session {
	return &Session{store: store}
}

// Identity returns the persisted identity, if one exists. The read is a
// synchronous local file read; there is no network call and no error when the
// record is simply absent.
func (s *Session) Identity() (model.Identity, bool, error) {
	var rec identityRecord
	found, err := s.store.Read(identityKey, &rec)
	if err != nil {
		return model.Identity{}, false, err
	}
	if !found || rec.Data.ID == "" {
		return model.Identity{}, false, nil
	}
	return rec.Data, true, nil
}

// SetIdentity persists the registered identity. Called exactly once per
// profile, after the registration endpoint succeeds.
func (s *Session) SetIdentity(id model.Identity) error {
	if id.ID == "" {
		return fmt.Errorf("identity has no id")
	}
	return s.store.Write(identityKey, identityRecord{Data: id})
}

// IsUnlimited reports whether a persisted entitlement with approved status
// exists. There is no expiry and no re-validation against the server: once
// approved, the profile stays unlimited. Documented limitation, not a bug.
func (s *Session) IsUnlimited() bool {
	var rec model.Entitlement
	found, err := s.store.Read(entitlementKey, &rec)
	if err != nil || !found {
		return false
	}
	return rec.Approved()
}

// Entitlement returns the persisted entitlement record, if any.
func (s *Session) Entitlement() (model.Entitlement, bool, error) {
	var rec model.Entitlement
	found, err := s.store.Read(entitlementKey, &rec)
	if err != nil || !found {
		return model.Entitlement{}, false, err
	}
	return rec, true, nil
}

// RecordApproval overwrites the entitlement record with the approval payload
// returned by payment verification.
func (s *Session) RecordApproval(rec model.Entitlement) error {
	return s.store.Write(entitlementKey, rec)
}
