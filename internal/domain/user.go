package domain

// Identity is the resolved identity of an authenticated caller. Token
// issuance lives outside this service; we only consume verification.
type Identity struct {
	UserID string
	Email  string
}
