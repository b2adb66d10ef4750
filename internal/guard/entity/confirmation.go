package entity

import "time"

// ConfirmationOp is the action applied to pending confirmations.
type ConfirmationOp string

const (
	ConfirmationOpAllow  ConfirmationOp = "allow"
	ConfirmationOpCancel ConfirmationOp = "cancel"
)

// Valid reports whether the op is one the remote service accepts.
func (op ConfirmationOp) Valid() bool {
	return op == ConfirmationOpAllow || op == ConfirmationOpCancel
}

// Confirmation is a pending action awaiting second-factor approval. It lives
// only between a listing call and the following act call; the Key is supplied
// by the listing response and is not safe to reuse across calls.
type Confirmation struct {
	ID        string
	Key       string
	Type      int
	TypeName  string
	CreatorID string
	Headline  string
	Summary   []string
	Icon      string
	Multi     bool
	CreatedAt time.Time
}

// ConfirmationRef identifies a confirmation in an act call.
type ConfirmationRef struct {
	ID  string
	Key string
}

// SignedRequest is the ephemeral signature material for one remote call.
// A signature computed for one tag is invalid for any other operation, so a
// SignedRequest is recomputed per call and never reused.
type SignedRequest struct {
	SteamID  string
	DeviceID string
	Time     int64
	Tag      string
	Key      string
}
