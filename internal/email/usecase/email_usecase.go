package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	authrepo "storymail-backend/internal/auth/repository"
	emaildomain "storymail-backend/internal/email/domain"
	emaildto "storymail-backend/internal/email/dto"
	"storymail-backend/internal/email/repository"

	"gorm.io/datatypes"
)

// chatContextLimit caps how many recent emails feed the chat prompt.
const chatContextLimit = 50

// emailUsecase implements EmailUsecase interface
type emailUsecase struct {
	emailRepo  repository.EmailRepository
	digestRepo repository.DigestReportRepository
	userRepo   authrepo.UserRepository
	ai         AIService
}

// NewEmailUsecase creates a new instance of emailUsecase
func NewEmailUsecase(emailRepo repository.EmailRepository, digestRepo repository.DigestReportRepository, userRepo authrepo.UserRepository, ai AIService) EmailUsecase {
	return &emailUsecase{
		emailRepo:  emailRepo,
		digestRepo: digestRepo,
		userRepo:   userRepo,
		ai:         ai,
	}
}

func (u *emailUsecase) IngestInbound(ctx context.Context, payload *emaildto.InboundEmailRequest, raw []byte) (*emaildomain.Email, error) {
	toEmail := payload.Recipient()

	var userID string
	if toEmail != "" {
		user, created, err := u.userRepo.FindOrCreateByEmail(toEmail)
		if err != nil {
			return nil, err
		}
		if created {
			log.Printf("[PostmarkInbound] Created new user for email: %s", toEmail)
		}
		userID = user.ID
	} else {
		log.Printf("[PostmarkInbound] Warning: no recipient email found in the inbound payload")
	}

	// Classification failure never fails ingestion; the message is stored
	// with the fallback category and summary.
	category := emaildomain.CategoryOther
	summary := "Error generating summary"
	if classification, err := u.ai.ClassifyEmail(ctx, payload.Subject, payload.TextBody); err != nil {
		log.Printf("[PostmarkInbound] Classification failed: %v", err)
	} else {
		category = emaildomain.ParseCategory(classification.Category)
		summary = classification.Summary
	}

	date, ok := parseInboundDate(payload.Date)
	if !ok {
		date = time.Now()
		log.Printf("[PostmarkInbound] Date parsing failed, using current time: %s", date)
	}

	fromName := payload.FromName
	if fromName == "" {
		fromName = payload.FromFull.Name
	}

	email := &emaildomain.Email{
		UserID:    userID,
		FromEmail: payload.From,
		FromName:  fromName,
		ToEmail:   toEmail,
		Subject:   payload.Subject,
		Date:      date,
		TextBody:  payload.TextBody,
		HTMLBody:  payload.HTMLBody,
		RawJSON:   datatypes.JSON(raw),
		Category:  category,
		Summary:   summary,
	}
	if err := u.emailRepo.Create(email); err != nil {
		return nil, err
	}

	log.Printf("[PostmarkInbound] Email saved with ID: %s, category: %s", email.ID, email.Category)
	return email, nil
}

func (u *emailUsecase) CategoryStats(subject string) (map[string]int64, error) {
	stats := make(map[string]int64, len(emaildomain.Categories()))
	for _, category := range emaildomain.Categories() {
		stats[string(category)] = 0
	}

	user, err := u.userRepo.FindByAuth0ID(subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return stats, nil
	}

	for _, category := range emaildomain.Categories() {
		count, err := u.emailRepo.CountByCategory(user.ID, category)
		if err != nil {
			return nil, err
		}
		stats[string(category)] = count
	}
	return stats, nil
}

func (u *emailUsecase) ListByCategory(subject, category string) ([]*emaildomain.Email, error) {
	category = strings.TrimSuffix(category, "/")

	user, err := u.userRepo.FindByAuth0ID(subject)
	if err != nil {
		return nil, err
	}
	if user == nil || category == "" {
		return []*emaildomain.Email{}, nil
	}

	return u.emailRepo.FindByCategory(user.ID, emaildomain.Category(category))
}

func (u *emailUsecase) GetEmailByID(subject, id string) (*emaildomain.Email, error) {
	user, err := u.userRepo.FindByAuth0ID(subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return u.emailRepo.FindByID(user.ID, id)
}

func (u *emailUsecase) Chat(ctx context.Context, subject, query string) (*emaildto.ChatResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}

	user, err := u.userRepo.FindByAuth0ID(subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	emails, err := u.emailRepo.FindRecent(user.ID, chatContextLimit)
	if err != nil {
		return nil, err
	}

	answer, err := u.ai.Chat(ctx, query, chatContext(emails))
	if err != nil {
		return nil, err
	}

	return &emaildto.ChatResponse{
		Response:        answer,
		Query:           query,
		EmailsProcessed: len(emails),
	}, nil
}

func (u *emailUsecase) DashboardStats(subject string) (*emaildto.DashboardStatsResponse, error) {
	categories, err := u.CategoryStats(subject)
	if err != nil {
		return nil, err
	}

	stats := &emaildto.DashboardStatsResponse{Categories: categories}

	user, err := u.userRepo.FindByAuth0ID(subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return stats, nil
	}

	if stats.TotalEmails, err = u.emailRepo.CountByUser(user.ID); err != nil {
		return nil, err
	}
	if stats.EmailsThisWeek, err = u.emailRepo.CountSince(user.ID, time.Now().AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if stats.DigestCount, err = u.digestRepo.CountByUser(user.ID); err != nil {
		return nil, err
	}
	if stats.LatestEmailDate, err = u.emailRepo.LatestDate(user.ID); err != nil {
		return nil, err
	}
	return stats, nil
}

// chatContext formats recent emails (most recent first) for the chat prompt,
// subjects emphasized so the model can cite them back.
func chatContext(emails []*emaildomain.Email) string {
	blocks := make([]string, 0, len(emails))
	for _, email := range emails {
		blocks = append(blocks, fmt.Sprintf(
			"Email: %q (ID: %s)\nFrom: %s <%s>\nDate: %s\nCategory: %s\nSummary: %s\n",
			email.Subject, email.ID, email.FromName, email.FromEmail,
			email.Date.Format(time.RFC3339), email.Category, email.Summary))
	}
	return strings.Join(blocks, "\n\n")
}

// inboundDateFormats covers the timestamps Postmark has been seen sending.
var inboundDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

func parseInboundDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range inboundDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
