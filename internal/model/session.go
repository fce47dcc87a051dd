package model

import "time"

// Session references its owning user by ID only. Deleting a user revokes the
// user's sessions; sessions never keep a user alive.
type Session struct {
	ID        string     `gorm:"primaryKey;not null" json:"id"`
	UserID    string     `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"not null" json:"-"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
}

// Live reports whether the session is neither revoked nor expired at now.
func (s *Session) Live(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
