package auth

// User is the resolved identity of the signed-in user. Email is optional;
// it comes from the id token claims when present.
type User struct {
	UserID   string
	Username string
	Email    string
}

// Session is a point-in-time, read-only view of the authentication state.
// Authenticated is derived from User being set and is never stored
// independently.
type Session struct {
	User          *User
	Authenticated bool
	Loading       bool
}
