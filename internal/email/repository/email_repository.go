package repository

import (
	"errors"
	"time"

	emaildomain "storymail-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailRepository defines the interface for email persistence. Every read
// is scoped by the owning user; cross-user access yields nothing.
type EmailRepository interface {
	Create(email *emaildomain.Email) error
	FindByID(userID, id string) (*emaildomain.Email, error)
	FindByCategory(userID string, category emaildomain.Category) ([]*emaildomain.Email, error)
	FindRecent(userID string, limit int) ([]*emaildomain.Email, error)
	FindInRange(userID string, start, end time.Time) ([]*emaildomain.Email, error)
	CountByCategory(userID string, category emaildomain.Category) (int64, error)
	CountByUser(userID string) (int64, error)
	CountSince(userID string, since time.Time) (int64, error)
	LatestDate(userID string) (*time.Time, error)
}

// emailRepository implements EmailRepository interface
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new instance of emailRepository
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{
		db: db,
	}
}

func (r *emailRepository) Create(email *emaildomain.Email) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	email.CreatedAt = time.Now()
	return r.db.Create(email).Error
}

func (r *emailRepository) FindByID(userID, id string) (*emaildomain.Email, error) {
	var email emaildomain.Email
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) FindByCategory(userID string, category emaildomain.Category) ([]*emaildomain.Email, error) {
	var emails []*emaildomain.Email
	err := r.db.Where("user_id = ? AND category = ?", userID, category).
		Order("date DESC").Find(&emails).Error
	return emails, err
}

func (r *emailRepository) FindRecent(userID string, limit int) ([]*emaildomain.Email, error) {
	var emails []*emaildomain.Email
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC").Limit(limit).Find(&emails).Error
	return emails, err
}

func (r *emailRepository) FindInRange(userID string, start, end time.Time) ([]*emaildomain.Email, error) {
	var emails []*emaildomain.Email
	err := r.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date DESC").Find(&emails).Error
	return emails, err
}

func (r *emailRepository) CountByCategory(userID string, category emaildomain.Category) (int64, error) {
	var count int64
	err := r.db.Model(&emaildomain.Email{}).
		Where("user_id = ? AND category = ?", userID, category).Count(&count).Error
	return count, err
}

func (r *emailRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&emaildomain.Email{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *emailRepository) CountSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&emaildomain.Email{}).
		Where("user_id = ? AND date >= ?", userID, since).Count(&count).Error
	return count, err
}

func (r *emailRepository) LatestDate(userID string) (*time.Time, error) {
	var email emaildomain.Email
	err := r.db.Where("user_id = ?", userID).Order("date DESC").First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email.Date, nil
}
