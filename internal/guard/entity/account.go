package entity

// Account is an imported Steam Guard account record. It is read-only to the
// protocol engine; the registry that loaded it owns the bytes on disk.
type Account struct {
	SteamID        string
	AccountName    string
	SharedSecret   string
	IdentitySecret string
	DeviceID       string
	Sealed         bool
}

// HasSharedSecret reports whether the TOTP seed is present.
func (a Account) HasSharedSecret() bool {
	return a.SharedSecret != ""
}

// HasIdentitySecret reports whether the confirmation signing seed is present.
func (a Account) HasIdentitySecret() bool {
	return a.IdentitySecret != ""
}
