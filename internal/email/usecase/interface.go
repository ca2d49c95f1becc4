package usecase

import (
	"context"
	"errors"
	"time"

	emaildomain "storymail-backend/internal/email/domain"
	emaildto "storymail-backend/internal/email/dto"
	"storymail-backend/pkg/gemini"
	"storymail-backend/pkg/postmark"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoQuery      = errors.New("no query provided")
	// ErrNoEmails is returned when a digest window contains no emails;
	// nothing is persisted in that case.
	ErrNoEmails = errors.New("no emails found in the specified date range")
)

// AIService is the slice of the Gemini client the email flows depend on.
type AIService interface {
	ClassifyEmail(ctx context.Context, subject, body string) (gemini.Classification, error)
	GenerateDigest(ctx context.Context, emails []gemini.DigestEmail) (*gemini.DigestData, error)
	Chat(ctx context.Context, query, emailContext string) (string, error)
}

// MailSender dispatches outbound email (the digest PDF).
type MailSender interface {
	SendEmail(ctx context.Context, msg postmark.Message) error
}

// ReportRenderer renders the digest PDF.
type ReportRenderer interface {
	RenderDigest(start, end time.Time, data *gemini.DigestData) ([]byte, error)
}

// EmailUsecase defines ingestion, query and chat business logic.
type EmailUsecase interface {
	// IngestInbound persists one webhook delivery. Classification failure and
	// unparseable dates degrade; they never fail ingestion.
	IngestInbound(ctx context.Context, payload *emaildto.InboundEmailRequest, raw []byte) (*emaildomain.Email, error)
	// CategoryStats counts the user's emails per category (zeros included).
	CategoryStats(subject string) (map[string]int64, error)
	ListByCategory(subject, category string) ([]*emaildomain.Email, error)
	// GetEmailByID returns (nil, nil) when the email is absent or owned by
	// another user.
	GetEmailByID(subject, id string) (*emaildomain.Email, error)
	Chat(ctx context.Context, subject, query string) (*emaildto.ChatResponse, error)
	DashboardStats(subject string) (*emaildto.DashboardStatsResponse, error)
}

// DigestUsecase runs the digest pipeline: select, summarize, persist,
// optionally render a PDF and email it.
type DigestUsecase interface {
	GenerateDigest(ctx context.Context, subject string, req *emaildto.DigestRequest) (*emaildto.DigestResponse, error)
}
