package model

import "time"

// User carries the per-user vision provider settings. When APIKey is empty
// the analyzer falls back to the global configuration, and with neither set
// it produces mock analyses.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"not null;uniqueIndex" json:"username"`
	APIKey     string    `json:"-"`
	APIBaseURL string    `json:"api_base_url"`
	AIModel    string    `json:"ai_model"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasProviderConfig reports whether the user supplied their own credentials.
func (u *User) HasProviderConfig() bool {
	return u.APIKey != ""
}
