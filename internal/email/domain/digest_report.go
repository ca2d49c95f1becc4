package domain

import "time"

// DigestReport is a persisted periodic summary over a slice of a user's
// emails. Summary holds the structured digest as serialized JSON. Reports
// are immutable once created; issuing the same request twice produces two
// distinct reports.
type DigestReport struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Summary   string    `json:"summary" gorm:"type:text"`
	Emails    []Email   `json:"-" gorm:"many2many:digest_report_emails"`
	CreatedAt time.Time `json:"created_at"`
}

func (DigestReport) TableName() string {
	return "digest_reports"
}
