package domain

import "time"

type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent - изменение сессии пользователя.
type SessionEvent struct {
	Kind   SessionEventKind
	UserID string
	Email  string
	At     time.Time
}

func NewSessionEvent(kind SessionEventKind, identity Identity) SessionEvent {
	return SessionEvent{
		Kind:   kind,
		UserID: identity.UserID,
		Email:  identity.Email,
		At:     time.Now().UTC(),
	}
}
