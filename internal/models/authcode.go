package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuthCode is a single-use login credential. HasBeenUsed transitions
// false to true exactly once; records are never deleted by the service.
type AuthCode struct {
	bun.BaseModel `bun:"table:auth_codes,alias:ac"`

	ID          uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Code        string     `bun:"code,notnull,unique" json:"code"`
	HasBeenUsed bool       `bun:"has_been_used,notnull,default:false" json:"has_been_used"`
	CreatedAt   *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
