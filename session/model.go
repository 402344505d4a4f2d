package session

// Pointer is the durable record of the currently logged-in credential for
// one client. Email is the credential key; timestamps are Unix seconds.
type Pointer struct {
	Email      string
	CreatedAt  int64
	LastSeenAt int64
}
