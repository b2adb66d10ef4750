package inbound

import "time"

type AccountResponse struct {
	SteamID           string `json:"steam_id"`
	AccountName       string `json:"account_name"`
	DeviceID          string `json:"device_id"`
	Sealed            bool   `json:"sealed"`
	HasSharedSecret   bool   `json:"has_shared_secret"`
	HasIdentitySecret bool   `json:"has_identity_secret"`
}

type AccountImportRequest struct {
	MaFile string `json:"ma_file"`
}

type CodeResponse struct {
	Code            string `json:"code"`
	ValidForSeconds int    `json:"valid_for_seconds"`
}

type ConfirmationResponse struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Type      int      `json:"type"`
	TypeName  string   `json:"type_name,omitempty"`
	CreatorID string   `json:"creator_id,omitempty"`
	Headline  string   `json:"headline,omitempty"`
	Summary   []string `json:"summary,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Multi     bool     `json:"multi,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

type ActConfirmationsRequest struct {
	Op            string                   `json:"op"`
	Confirmations []ConfirmationRefRequest `json:"confirmations"`
}

type ConfirmationRefRequest struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type ActConfirmationsResponse struct {
	Acted int `json:"acted"`
}

func (ActConfirmationsResponse) Message() string {
	return "Confirmations processed. List again before acting on more."
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct{}

func (LoginResponse) Message() string {
	return "Login successful. A new session has been stored."
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Session cleared."
}

type SessionStatusResponse struct {
	State     string     `json:"state"`
	Valid     bool       `json:"valid"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

type DeviceResponse struct {
	TokenID         string `json:"token_id"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Kind            string `json:"kind"`
	Location        string `json:"location,omitempty"`
	LoggedIn        bool   `json:"logged_in"`
	LastSeen        string `json:"last_seen,omitempty"`
	FirstSeen       string `json:"first_seen,omitempty"`
	IsNew           bool   `json:"is_new"`
	IsCurrentDevice bool   `json:"is_current_device"`
}

type RemoveAllDevicesResponse struct{}

func (RemoveAllDevicesResponse) Message() string {
	return "Signed out everywhere. Re-fetch the device list."
}

type SecurityStatusResponse struct {
	AccountName     string `json:"account_name,omitempty"`
	Email           string `json:"email,omitempty"`
	PhoneHint       string `json:"phone_hint,omitempty"`
	TwoFactorStatus int    `json:"two_factor_status"`
}
