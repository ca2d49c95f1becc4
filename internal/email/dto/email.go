package dto

import (
	"time"

	emaildomain "storymail-backend/internal/email/domain"
	"storymail-backend/pkg/gemini"
)

// InboundAddress is one entry of Postmark's FromFull/ToFull arrays.
type InboundAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

// InboundEmailRequest is the Postmark inbound webhook payload (the fields
// we read; the full payload is persisted raw alongside).
type InboundEmailRequest struct {
	From     string           `json:"From"`
	FromName string           `json:"FromName"`
	FromFull InboundAddress   `json:"FromFull"`
	ToFull   []InboundAddress `json:"ToFull"`
	Subject  string           `json:"Subject"`
	Date     string           `json:"Date"`
	TextBody string           `json:"TextBody"`
	HTMLBody string           `json:"HtmlBody"`
}

// Recipient returns the first ToFull address, or "".
func (r *InboundEmailRequest) Recipient() string {
	if len(r.ToFull) == 0 {
		return ""
	}
	return r.ToFull[0].Email
}

type EmailListItem struct {
	ID        string    `json:"id"`
	FromEmail string    `json:"from_email"`
	FromName  string    `json:"from_name"`
	ToEmail   string    `json:"to_email"`
	Subject   string    `json:"subject"`
	Date      time.Time `json:"date"`
	TextBody  string    `json:"text_body"`
	Summary   string    `json:"summary"`
}

func NewEmailListItem(email *emaildomain.Email) EmailListItem {
	return EmailListItem{
		ID:        email.ID,
		FromEmail: email.FromEmail,
		FromName:  email.FromName,
		ToEmail:   email.ToEmail,
		Subject:   email.Subject,
		Date:      email.Date,
		TextBody:  email.TextBody,
		Summary:   email.Summary,
	}
}

type EmailDetailResponse struct {
	EmailListItem
	HTMLBody string `json:"html_body"`
	Category string `json:"category"`
}

func NewEmailDetailResponse(email *emaildomain.Email) EmailDetailResponse {
	return EmailDetailResponse{
		EmailListItem: NewEmailListItem(email),
		HTMLBody:      email.HTMLBody,
		Category:      string(email.Category),
	}
}

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	Response        string `json:"response"`
	Query           string `json:"query"`
	EmailsProcessed int    `json:"emails_processed"`
}

type DigestRequest struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	SendEmail  bool   `json:"send_email"`
	IncludePDF bool   `json:"include_pdf"`
}

type DigestResponse struct {
	ID          string             `json:"id"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	DigestData  *gemini.DigestData `json:"digest_data"`
	EmailCount  int                `json:"email_count"`
	PDFIncluded bool               `json:"pdf_included"`
	EmailSent   bool               `json:"email_sent"`
	PDFBase64   string             `json:"pdf_base64,omitempty"`
}

type DashboardStatsResponse struct {
	TotalEmails     int64            `json:"total_emails"`
	Categories      map[string]int64 `json:"categories"`
	EmailsThisWeek  int64            `json:"emails_this_week"`
	DigestCount     int64            `json:"digest_count"`
	LatestEmailDate *time.Time       `json:"latest_email_date"`
}
