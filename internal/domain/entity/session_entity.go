package entity

// Stage is the position of a client session in the registration/login flow.
type Stage string

const (
	StageAnonymous       Stage = "anonymous"
	StageRegistering     Stage = "registering"
	StagePendingPassword Stage = "pending_password"
	StageAuthenticated   Stage = "authenticated"
)

// SessionUser is the identity stored in an authenticated session.
type SessionUser struct {
	ID       string
	Username string
	Email    string
}

// Session is the server-side state behind a client session cookie.
//
//	Registering      -> Email
//	PendingPassword  -> Email, Username
//	Authenticated    -> User
type Session struct {
	ID       string
	Stage    Stage
	Email    string
	Username string
	User     *SessionUser
}

// NewAnonymousSession returns the state of a client that holds no session.
func NewAnonymousSession() *Session {
	return &Session{Stage: StageAnonymous}
}

// Registering moves the session to the Registering stage for email.
func (s *Session) Registering(email string) {
	s.Stage = StageRegistering
	s.Email = email
	s.Username = ""
	s.User = nil
}

// PendingPassword moves the session to the PendingPassword stage.
func (s *Session) PendingPassword(email, username string) {
	s.Stage = StagePendingPassword
	s.Email = email
	s.Username = username
	s.User = nil
}

// Authenticate moves the session to the Authenticated stage.
func (s *Session) Authenticate(u SessionUser) {
	s.Stage = StageAuthenticated
	s.Email = ""
	s.Username = ""
	s.User = &u
}

// Reset drops all flow state while keeping the session id.
func (s *Session) Reset() {
	s.Stage = StageAnonymous
	s.Email = ""
	s.Username = ""
	s.User = nil
}

// IsAuthenticated reports whether the session may access protected pages.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Stage == StageAuthenticated && s.User != nil
}

// AwaitingPassword reports whether the session passed verification.
func (s *Session) AwaitingPassword() bool {
	return s != nil && s.Stage == StagePendingPassword && s.Email != ""
}
