package app

import (
	"context"
	"fmt"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type Authenticator interface {
	// PlainLogin authenticates a user with email/identifier and password and
	// returns the user together with a signed bearer token.
	PlainLogin(ctx context.Context, username, password string) (*domain.User, string, error)
	// Register creates a new local account and immediately logs it in.
	Register(ctx context.Context, email, fullName, password string) (*domain.User, string, error)
	// Logout records the logout of the given token.
	Logout(ctx context.Context, token string) error
	// AuthenticateContext verifies the bearer token and returns a context that
	// carries the authenticated user's identity.
	AuthenticateContext(ctx context.Context, token string) (context.Context, *domain.User, error)
	// ChangePassword sets a new password after verifying the old one.
	ChangePassword(ctx context.Context, id domain.UserIdentifier, oldPassword, newPassword string) error
}

type UserManager interface {
	GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	FindUsers(ctx context.Context, search string) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id domain.UserIdentifier) error
	SetUserDisabled(ctx context.Context, id domain.UserIdentifier, disabled bool, reason string) error
	BootstrapAdminUser(ctx context.Context) error
}

type QuizManager interface {
	GetSubject(ctx context.Context, id domain.SubjectIdentifier) (*domain.Subject, error)
	GetAllSubjects(ctx context.Context) ([]domain.Subject, error)
	CreateSubject(ctx context.Context, subject *domain.Subject) (*domain.Subject, error)
	UpdateSubject(ctx context.Context, subject *domain.Subject) (*domain.Subject, error)
	DeleteSubject(ctx context.Context, id domain.SubjectIdentifier) error

	GetSubjectChapters(ctx context.Context, id domain.SubjectIdentifier) ([]domain.Chapter, error)
	CreateChapter(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error)
	UpdateChapter(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error)
	DeleteChapter(ctx context.Context, id domain.ChapterIdentifier) error

	GetChapterMaterials(ctx context.Context, id domain.ChapterIdentifier) ([]domain.StudyMaterial, error)
	CreateStudyMaterial(ctx context.Context, material *domain.StudyMaterial) (*domain.StudyMaterial, error)
	DeleteStudyMaterial(ctx context.Context, id domain.StudyMaterialIdentifier) error

	GetQuestion(ctx context.Context, id domain.QuestionIdentifier) (*domain.Question, error)
	GetSubjectQuestions(ctx context.Context, id domain.SubjectIdentifier) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, question *domain.Question) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, question *domain.Question) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, id domain.QuestionIdentifier) error

	GenerateMockTest(ctx context.Context, spec domain.TestSpec) (*domain.MockTest, error)
	GetMockTest(ctx context.Context, id domain.MockTestIdentifier) (*domain.MockTest, error)
	GetUserMockTests(ctx context.Context, id domain.UserIdentifier) ([]domain.MockTest, error)
	StartAttempt(ctx context.Context, testId domain.MockTestIdentifier) (*domain.Attempt, error)
	SubmitAttempt(ctx context.Context, id domain.AttemptIdentifier, answers domain.AnswerSet) (*domain.Attempt, error)
	GetAttempt(ctx context.Context, id domain.AttemptIdentifier) (*domain.Attempt, error)
	GetUserAttempts(ctx context.Context, id domain.UserIdentifier) ([]domain.Attempt, error)
	GetUserStatistics(ctx context.Context, id domain.UserIdentifier) (*domain.UserStatistics, error)
}

type NotificationManager interface {
	Notify(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	GetUserNotifications(ctx context.Context, id domain.UserIdentifier) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id domain.NotificationIdentifier) error
	Dismiss(ctx context.Context, id domain.NotificationIdentifier) error
	StartBackgroundJobs(ctx context.Context)
}

type StatisticsRepo interface {
	// GetAdminOverview collects the portal-wide counters for the admin dashboard.
	GetAdminOverview(ctx context.Context) (*domain.AdminOverview, error)
}

// Metrics receives counting events from the message bus.
type Metrics interface {
	CountLogin(success bool)
	CountTestGenerated()
	CountAttemptGraded(attempt *domain.Attempt)
}

type App struct {
	Config *config.Config
	bus    evbus.MessageBus

	Authenticator
	UserManager
	QuizManager
	NotificationManager
	StatisticsRepo
}

func New(
	cfg *config.Config,
	bus evbus.MessageBus,
	authenticator Authenticator,
	users UserManager,
	quiz QuizManager,
	notifications NotificationManager,
	stats StatisticsRepo,
	metrics Metrics,
) (*App, error) {
	a := &App{
		Config: cfg,
		bus:    bus,

		Authenticator:       authenticator,
		UserManager:         users,
		QuizManager:         quiz,
		NotificationManager: notifications,
		StatisticsRepo:      stats,
	}

	if err := a.connectMetrics(metrics); err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	startupContext, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Switch to admin user context
	startupContext = domain.SetUserInfo(startupContext, domain.SystemAdminContextUserInfo())

	if err := a.BootstrapAdminUser(startupContext); err != nil {
		return nil, fmt.Errorf("failed to create default user: %w", err)
	}

	return a, nil
}

// Startup launches the background jobs of all managers. It returns once the
// jobs are scheduled.
func (a *App) Startup(ctx context.Context) error {
	a.NotificationManager.StartBackgroundJobs(ctx)

	return nil
}

func (a *App) connectMetrics(metrics Metrics) error {
	if metrics == nil {
		return nil // metrics collection disabled
	}

	if err := a.bus.Subscribe(TopicAuthLogin, func(domain.UserIdentifier) {
		metrics.CountLogin(true)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", TopicAuthLogin, err)
	}
	if err := a.bus.Subscribe(TopicAuthLoginFailed, func(string) {
		metrics.CountLogin(false)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", TopicAuthLoginFailed, err)
	}
	if err := a.bus.Subscribe(TopicTestGenerated, func(domain.MockTestIdentifier) {
		metrics.CountTestGenerated()
	}); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", TopicTestGenerated, err)
	}
	if err := a.bus.Subscribe(TopicAttemptGraded, metrics.CountAttemptGraded); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", TopicAttemptGraded, err)
	}

	return nil
}
