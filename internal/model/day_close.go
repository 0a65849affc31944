package model

import (
	"time"

	"github.com/google/uuid"
)

// DayClosePeriod is a trading period of one branch. ClosedAt == nil means the
// period is open; a partial unique index allows one open period per branch.
// Summary holds the JSON snapshot written when the period is closed.
type DayClosePeriod struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID  string     `gorm:"type:varchar(64);not null;index"`
	StartedAt time.Time  `gorm:"not null"`
	ClosedAt  *time.Time `gorm:"index"`
	Summary   []byte     `gorm:"type:jsonb"`
	Note      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *DayClosePeriod) IsOpen() bool { return p.ClosedAt == nil }
