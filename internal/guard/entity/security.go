package entity

// SecurityStatus is the account security summary extracted from the
// authorized-devices page.
type SecurityStatus struct {
	AccountName     string
	Email           string
	PhoneHint       string
	TwoFactorStatus int
}
