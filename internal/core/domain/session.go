package domain

// Session is the in-memory authentication state. A session is authenticated
// exactly when it carries a token.
type Session struct {
	User  *User
	Token string
}

// IsAuthenticated reports whether a credential is held.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// PersistedSession is the credential/identity pair that survives restarts.
// Both halves are always written and cleared together.
type PersistedSession struct {
	Token string `json:"todo_token"`
	User  User   `json:"todo_user"`
}

// Complete reports whether both halves of the pair are present.
func (p *PersistedSession) Complete() bool {
	return p != nil && p.Token != "" && p.User.ID != 0
}

// Fixed keys of the persisted session record.
const (
	KeyToken = "todo_token"
	KeyUser  = "todo_user"
)
