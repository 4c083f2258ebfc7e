package models

import "time"

// FunctionKey authorizes calls to the public endpoints. Only the bcrypt hash
// of the secret half is stored.
type FunctionKey struct {
	ID         string     `gorm:"column:id;type:text;primaryKey" json:"id"`
	Name       string     `gorm:"column:name;type:text" json:"name"`
	SecretHash string     `gorm:"column:secret_hash;type:text;not null" json:"-"`
	CreatedAt  time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	RevokedAt  *time.Time `gorm:"column:revoked_at;type:timestamptz" json:"revoked_at,omitempty"`
}

func (FunctionKey) TableName() string { return "function_keys" }
