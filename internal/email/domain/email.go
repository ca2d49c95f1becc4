package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Category is the closed set of classification labels applied to each email.
type Category string

const (
	CategoryProductivity Category = "productivity"
	CategoryScam         Category = "scam"
	CategoryNewsletters  Category = "newsletters"
	CategoryWork         Category = "work"
	CategoryOther        Category = "other"
)

// Categories returns every valid category, in display order.
func Categories() []Category {
	return []Category{
		CategoryProductivity,
		CategoryWork,
		CategoryScam,
		CategoryNewsletters,
		CategoryOther,
	}
}

// ParseCategory normalizes a label; anything outside the closed set is "other".
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryProductivity:
		return CategoryProductivity
	case CategoryScam:
		return CategoryScam
	case CategoryNewsletters:
		return CategoryNewsletters
	case CategoryWork:
		return CategoryWork
	default:
		return CategoryOther
	}
}

// Email is one ingested inbound message. Rows are immutable after creation.
type Email struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	UserID    string         `json:"user_id" gorm:"index"`
	FromEmail string         `json:"from_email"`
	FromName  string         `json:"from_name"`
	ToEmail   string         `json:"to_email"`
	Subject   string         `json:"subject"`
	Date      time.Time      `json:"date"`
	TextBody  string         `json:"text_body" gorm:"type:text"`
	HTMLBody  string         `json:"html_body" gorm:"type:text"`
	RawJSON   datatypes.JSON `json:"-"` // full inbound webhook payload
	Category  Category       `json:"category" gorm:"index;default:other"`
	Summary   string         `json:"summary" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Email) TableName() string {
	return "emails"
}
