package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authdomain "storymail-backend/internal/auth/domain"
	emaildomain "storymail-backend/internal/email/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &emaildomain.Email{}, &emaildomain.DigestReport{}))
	return db
}

func seedEmail(t *testing.T, repo EmailRepository, userID, subject string, date time.Time, category emaildomain.Category) *emaildomain.Email {
	t.Helper()
	email := &emaildomain.Email{
		UserID:   userID,
		Subject:  subject,
		Date:     date,
		Category: category,
	}
	require.NoError(t, repo.Create(email))
	return email
}

func TestEmailRepositoryCreateAssignsID(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	email := seedEmail(t, repo, "u1", "hello", time.Now(), emaildomain.CategoryOther)
	require.NotEmpty(t, email.ID)
	require.False(t, email.CreatedAt.IsZero())
}

func TestEmailRepositoryScopesByUser(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	mine := seedEmail(t, repo, "u1", "mine", time.Now(), emaildomain.CategoryWork)
	theirs := seedEmail(t, repo, "u2", "theirs", time.Now(), emaildomain.CategoryWork)

	found, err := repo.FindByID("u1", mine.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	// another user's email is invisible, not just hidden
	crossed, err := repo.FindByID("u1", theirs.ID)
	require.NoError(t, err)
	require.Nil(t, crossed)

	emails, err := repo.FindByCategory("u1", emaildomain.CategoryWork)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	require.Equal(t, "mine", emails[0].Subject)
}

func TestEmailRepositoryFindByCategoryNewestFirst(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	now := time.Now()
	seedEmail(t, repo, "u1", "old", now.Add(-48*time.Hour), emaildomain.CategoryNewsletters)
	seedEmail(t, repo, "u1", "new", now, emaildomain.CategoryNewsletters)
	seedEmail(t, repo, "u1", "work", now, emaildomain.CategoryWork)

	emails, err := repo.FindByCategory("u1", emaildomain.CategoryNewsletters)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	require.Equal(t, "new", emails[0].Subject)
	require.Equal(t, "old", emails[1].Subject)
}

func TestEmailRepositoryFindInRange(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	now := time.Now()
	seedEmail(t, repo, "u1", "inside", now.Add(-24*time.Hour), emaildomain.CategoryOther)
	seedEmail(t, repo, "u1", "outside", now.Add(-10*24*time.Hour), emaildomain.CategoryOther)

	emails, err := repo.FindInRange("u1", now.Add(-7*24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	require.Equal(t, "inside", emails[0].Subject)
}

func TestEmailRepositoryFindRecentHonorsLimit(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	now := time.Now()
	for i := 0; i < 5; i++ {
		seedEmail(t, repo, "u1", fmt.Sprintf("mail-%d", i), now.Add(-time.Duration(i)*time.Hour), emaildomain.CategoryOther)
	}

	emails, err := repo.FindRecent("u1", 3)
	require.NoError(t, err)
	require.Len(t, emails, 3)
	require.Equal(t, "mail-0", emails[0].Subject)
}

func TestEmailRepositoryCounts(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	now := time.Now()
	seedEmail(t, repo, "u1", "a", now, emaildomain.CategoryWork)
	seedEmail(t, repo, "u1", "b", now.Add(-10*24*time.Hour), emaildomain.CategoryWork)
	seedEmail(t, repo, "u1", "c", now, emaildomain.CategoryScam)
	seedEmail(t, repo, "u2", "d", now, emaildomain.CategoryWork)

	total, err := repo.CountByUser("u1")
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	work, err := repo.CountByCategory("u1", emaildomain.CategoryWork)
	require.NoError(t, err)
	require.EqualValues(t, 2, work)

	recent, err := repo.CountSince("u1", now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, recent)
}

func TestEmailRepositoryLatestDate(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	latest, err := repo.LatestDate("u1")
	require.NoError(t, err)
	require.Nil(t, latest)

	newest := time.Now().Truncate(time.Second)
	seedEmail(t, repo, "u1", "old", newest.Add(-time.Hour), emaildomain.CategoryOther)
	seedEmail(t, repo, "u1", "new", newest, emaildomain.CategoryOther)

	latest, err = repo.LatestDate("u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.WithinDuration(t, newest, *latest, time.Second)
}

func TestDigestReportRepositoryCreateWithAssociations(t *testing.T) {
	db := newTestDB(t)
	emailRepo := NewEmailRepository(db)
	digestRepo := NewDigestReportRepository(db)

	now := time.Now()
	first := seedEmail(t, emailRepo, "u1", "a", now, emaildomain.CategoryWork)
	second := seedEmail(t, emailRepo, "u1", "b", now, emaildomain.CategoryOther)

	report := &emaildomain.DigestReport{
		UserID:    "u1",
		StartDate: now.Add(-7 * 24 * time.Hour),
		EndDate:   now,
		Summary:   `{"narrative_summary":"quiet week"}`,
		Emails:    []emaildomain.Email{*first, *second},
	}
	require.NoError(t, digestRepo.Create(report))
	require.NotEmpty(t, report.ID)

	var joins int64
	require.NoError(t, db.Table("digest_report_emails").Count(&joins).Error)
	require.EqualValues(t, 2, joins)

	count, err := digestRepo.CountByUser("u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	other, err := digestRepo.CountByUser("u2")
	require.NoError(t, err)
	require.EqualValues(t, 0, other)
}
