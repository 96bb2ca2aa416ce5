package models

// Session is the persisted authentication state of the CLI.
type Session struct {
	UserName     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Authenticated reports whether the session carries tokens.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}
