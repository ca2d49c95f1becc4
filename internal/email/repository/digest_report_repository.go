package repository

import (
	"time"

	emaildomain "storymail-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DigestReportRepository defines the interface for digest report persistence
type DigestReportRepository interface {
	// Create persists the report together with its email associations.
	Create(report *emaildomain.DigestReport) error
	CountByUser(userID string) (int64, error)
}

// digestReportRepository implements DigestReportRepository interface
type digestReportRepository struct {
	db *gorm.DB
}

// NewDigestReportRepository creates a new instance of digestReportRepository
func NewDigestReportRepository(db *gorm.DB) DigestReportRepository {
	return &digestReportRepository{
		db: db,
	}
}

func (r *digestReportRepository) Create(report *emaildomain.DigestReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	report.CreatedAt = time.Now()
	// Omit the association upsert so existing email rows stay untouched;
	// only the join rows are written.
	return r.db.Omit("Emails.*").Create(report).Error
}

func (r *digestReportRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&emaildomain.DigestReport{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
