package service

// Session identifies the authenticated caller of an operation. It is
// produced by the auth middleware from a verified token and passed in
// explicitly; services never read identity from anywhere else.
type Session struct {
	UserID string
}

// Authenticated reports whether the session carries a user
func (s Session) Authenticated() bool {
	return s.UserID != ""
}
