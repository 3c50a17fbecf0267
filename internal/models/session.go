package models

import (
	"encoding/json"
	"time"
)

// SessionTTL is the fixed session lifetime. Sessions do not slide: the
// expiry set at login is final.
const SessionTTL = 30 * 24 * time.Hour

type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (s *Session) TableName() string {
	return "sessions"
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

func SessionFromJSON(data []byte) (*Session, error) {
	var session Session
	err := json.Unmarshal(data, &session)
	return &session, err
}
