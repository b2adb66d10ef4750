package entity

import "time"

// Session is the per-account authenticated session record. It is replaced
// wholesale on login; only LastUsed is ever patched in place.
type Session struct {
	SessionID    string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	LastUsed     time.Time
}

// Usable reports whether the session carries both credentials required for
// authenticated calls. A session missing either one is treated as absent.
func (s Session) Usable() bool {
	return s.SessionID != "" && s.AccessToken != ""
}

// SessionState tracks what the last call outcome told us about a session.
type SessionState int8

const (
	// SessionStateUnknown means no authenticated call has settled the question.
	SessionStateUnknown SessionState = iota
	// SessionStateValid means the last authenticated call succeeded.
	SessionStateValid
	// SessionStateInvalid means the last call came back login-required.
	SessionStateInvalid
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case SessionStateValid:
		return "valid"
	case SessionStateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// SessionValidity is the answer to "can this account make authenticated
// calls right now", with the reason when it cannot.
type SessionValidity struct {
	Valid   bool
	Session *Session
	Reason  string
}
