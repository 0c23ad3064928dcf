package model

import (
	"strconv"
	"time"
)

// Session is a signed-in browser session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// CachedSession represents session data stored in a Redis hash.
type CachedSession struct {
	UserID    string `redis:"user_id"`
	CreatedAt string `redis:"created_at"` // Unix timestamp
}

// ToCachedSession converts a Session to its Redis hash form.
func (s *Session) ToCachedSession() *CachedSession {
	return &CachedSession{
		UserID:    s.UserID,
		CreatedAt: strconv.FormatInt(s.CreatedAt.Unix(), 10),
	}
}

// ToSession converts a cached hash back to a Session.
func (c *CachedSession) ToSession(id string) *Session {
	s := &Session{ID: id, UserID: c.UserID}
	if ts, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
		s.CreatedAt = time.Unix(ts, 0)
	}
	return s
}
