package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a local account materialized from a verified external identity.
// Username doubles as the join key against the external account namespace.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username     string         `bun:"username,notnull,unique" json:"username"`
	Author       map[string]any `bun:"author,type:jsonb" json:"author,omitempty"`
	IsBanned     bool           `bun:"is_banned,notnull,default:false" json:"is_banned"`
	IsPrivileged bool           `bun:"is_privileged,notnull,default:false" json:"is_privileged"`
	LastLogin    *time.Time     `bun:"last_login,nullzero" json:"last_login,omitempty"`
	Settings     map[string]any `bun:"settings,type:jsonb" json:"settings,omitempty"`
	CreatedAt    *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
