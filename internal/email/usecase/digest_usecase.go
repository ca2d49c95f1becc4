package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	authdomain "storymail-backend/internal/auth/domain"
	authrepo "storymail-backend/internal/auth/repository"
	emaildomain "storymail-backend/internal/email/domain"
	emaildto "storymail-backend/internal/email/dto"
	"storymail-backend/internal/email/repository"
	"storymail-backend/pkg/gemini"
	"storymail-backend/pkg/postmark"
)

// ErrInvalidDate is returned for unparseable digest window overrides.
var ErrInvalidDate = errors.New("invalid date format")

// defaultDigestWindow is the lookback used when the request carries no dates.
const defaultDigestWindow = 7 * 24 * time.Hour

// digestBodyLimit truncates each email body fed into the digest prompt.
const digestBodyLimit = 200

// digestUsecase implements DigestUsecase interface
type digestUsecase struct {
	emailRepo  repository.EmailRepository
	digestRepo repository.DigestReportRepository
	userRepo   authrepo.UserRepository
	ai         AIService
	renderer   ReportRenderer
	mailer     MailSender
	fromEmail  string
}

// NewDigestUsecase creates a new instance of digestUsecase
func NewDigestUsecase(emailRepo repository.EmailRepository, digestRepo repository.DigestReportRepository, userRepo authrepo.UserRepository, ai AIService, renderer ReportRenderer, mailer MailSender, fromEmail string) DigestUsecase {
	return &digestUsecase{
		emailRepo:  emailRepo,
		digestRepo: digestRepo,
		userRepo:   userRepo,
		ai:         ai,
		renderer:   renderer,
		mailer:     mailer,
		fromEmail:  fromEmail,
	}
}

// GenerateDigest walks the pipeline: selecting, summarizing, persisting,
// then optional rendering and sending. Once the report is persisted no later
// failure rolls it back; rendering and dispatch degrade to flags in the
// response.
func (u *digestUsecase) GenerateDigest(ctx context.Context, subject string, req *emaildto.DigestRequest) (*emaildto.DigestResponse, error) {
	user, err := u.userRepo.FindByAuth0ID(subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	start, end, err := digestWindow(req)
	if err != nil {
		return nil, err
	}

	emails, err := u.emailRepo.FindInRange(user.ID, start, end)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, ErrNoEmails
	}

	data := u.summarize(ctx, emails)

	summaryJSON, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	report := &emaildomain.DigestReport{
		UserID:    user.ID,
		StartDate: start,
		EndDate:   end,
		Summary:   string(summaryJSON),
		Emails:    dereference(emails),
	}
	if err := u.digestRepo.Create(report); err != nil {
		return nil, err
	}

	var pdfContent []byte
	if req.IncludePDF || req.SendEmail {
		pdfContent, err = u.renderer.RenderDigest(start, end, data)
		if err != nil {
			log.Printf("[Digest] Failed to render PDF: %v", err)
			pdfContent = nil
		}
	}

	emailSent := false
	if req.SendEmail && len(pdfContent) > 0 {
		if err := u.sendDigestEmail(ctx, user, start, end, pdfContent); err != nil {
			log.Printf("[Digest] Failed to send digest email to %s: %v", user.Email, err)
		} else {
			emailSent = true
		}
	}

	resp := &emaildto.DigestResponse{
		ID:         report.ID,
		StartDate:  start,
		EndDate:    end,
		DigestData: data,
		EmailCount: len(emails),
		EmailSent:  emailSent,
	}
	if req.IncludePDF && len(pdfContent) > 0 {
		resp.PDFBase64 = base64.StdEncoding.EncodeToString(pdfContent)
		resp.PDFIncluded = true
	}
	return resp, nil
}

// summarize asks the model for the structured digest; on failure it
// substitutes an error-flavored digest instead of aborting.
func (u *digestUsecase) summarize(ctx context.Context, emails []*emaildomain.Email) *gemini.DigestData {
	digestEmails := make([]gemini.DigestEmail, 0, len(emails))
	for _, email := range emails {
		body := email.TextBody
		if len(body) > digestBodyLimit {
			body = body[:digestBodyLimit] + "..."
		}
		digestEmails = append(digestEmails, gemini.DigestEmail{
			Subject:   email.Subject,
			TextBody:  body,
			FromEmail: email.FromEmail,
			FromName:  email.FromName,
			Category:  string(email.Category),
			Date:      email.Date.Format(time.RFC3339),
		})
	}

	data, err := u.ai.GenerateDigest(ctx, digestEmails)
	if err != nil {
		log.Printf("[Digest] Error generating digest: %v", err)
		return &gemini.DigestData{
			NarrativeSummary: fmt.Sprintf("Error generating digest: %s", err),
			CategoryCounts:   map[string]int{"error": 1},
			Highlights:       []string{"Error generating digest"},
			Clusters:         map[string][]string{},
		}
	}
	return data
}

func (u *digestUsecase) sendDigestEmail(ctx context.Context, user *authdomain.User, start, end time.Time, pdfContent []byte) error {
	startStr := start.Format("Jan 02")
	endStr := end.Format("Jan 02, 2006")

	name := user.Name
	if name == "" {
		name = "there"
	}

	return u.mailer.SendEmail(ctx, postmark.Message{
		From:    u.fromEmail,
		To:      user.Email,
		Subject: fmt.Sprintf("Your Weekly Email Digest: %s - %s", startStr, endStr),
		TextBody: fmt.Sprintf("Your weekly email digest is attached. This covers your emails from %s to %s.",
			startStr, endStr),
		HTMLBody: fmt.Sprintf(`<html>
<body>
    <h1>Your Weekly Email Digest</h1>
    <p>Hello %s,</p>
    <p>Attached is your weekly digest of emails from %s to %s.</p>
    <p>This report was automatically generated by StoryMail's AI.</p>
</body>
</html>`, name, startStr, endStr),
		Attachments: []postmark.Attachment{
			{
				Name:        fmt.Sprintf("Email_Digest_%s_to_%s.pdf", startStr, endStr),
				Content:     base64.StdEncoding.EncodeToString(pdfContent),
				ContentType: "application/pdf",
			},
		},
	})
}

func digestWindow(req *emaildto.DigestRequest) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.Add(-defaultDigestWindow)

	if req.StartDate != "" {
		t, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q", ErrInvalidDate, req.StartDate)
		}
		start = t
	}
	if req.EndDate != "" {
		t, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q", ErrInvalidDate, req.EndDate)
		}
		end = t
	}
	return start, end, nil
}

func dereference(emails []*emaildomain.Email) []emaildomain.Email {
	out := make([]emaildomain.Email, 0, len(emails))
	for _, email := range emails {
		out = append(out, *email)
	}
	return out
}
