package session

import "time"

// Session is the authenticated handle for management API calls. Built once
// per run, read-only afterwards.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	TenantID    string
}

func (s Session) Valid(now time.Time) bool {
	return len(s.AccessToken) > 0 && now.Before(s.ExpiresAt)
}
