package server

import (
	"context"
	"time"

	"soundbite/internal/models"
	"soundbite/internal/repository"
	"soundbite/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// MockSnippetRepository is a mock of the SnippetRepository interface
type MockSnippetRepository struct {
	mock.Mock
}

func (m *MockSnippetRepository) Create(ctx context.Context, snippet *models.Snippet) error {
	args := m.Called(ctx, snippet)
	return args.Error(0)
}

func (m *MockSnippetRepository) GetByID(ctx context.Context, id string) (*models.Snippet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snippet), args.Error(1)
}

func (m *MockSnippetRepository) ListFeed(ctx context.Context, q repository.FeedQuery) ([]*models.Snippet, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Snippet), args.Error(1)
}

func (m *MockSnippetRepository) ListByOwner(ctx context.Context, ownerHandle string, limit int, after time.Time) ([]*models.Snippet, error) {
	args := m.Called(ctx, ownerHandle, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Snippet), args.Error(1)
}

func (m *MockSnippetRepository) DeleteCascade(ctx context.Context, id string) (repository.CascadeResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.CascadeResult), args.Error(1)
}

func (m *MockSnippetRepository) UpdateOwnerImage(ctx context.Context, ownerHandle, imageURL string) (int64, error) {
	args := m.Called(ctx, ownerHandle, imageURL)
	return args.Get(0).(int64), args.Error(1)
}

// MockEngagementRepository is a mock of the EngagementRepository interface
type MockEngagementRepository struct {
	mock.Mock
}

func (m *MockEngagementRepository) Find(ctx context.Context, kind models.EngagementKind, userHandle, snippetID string) (*models.Engagement, error) {
	args := m.Called(ctx, kind, userHandle, snippetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) Create(ctx context.Context, engagement *models.Engagement) (bool, error) {
	args := m.Called(ctx, engagement)
	return args.Bool(0), args.Error(1)
}

func (m *MockEngagementRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCounterRepository is a mock of the CounterRepository interface
type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) Increment(ctx context.Context, snippetID string, field models.CounterField, delta int) error {
	args := m.Called(ctx, snippetID, field, delta)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListBySnippet(ctx context.Context, snippetID string) ([]*models.Comment, error) {
	args := m.Called(ctx, snippetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

// MockNotificationRepository is a mock of the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) (bool, error) {
	args := m.Called(ctx, notification)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientHandle string, limit int) ([]*models.Notification, error) {
	args := m.Called(ctx, recipientHandle, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, recipientHandle string, ids []string) (int64, error) {
	args := m.Called(ctx, recipientHandle, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// testRepos bundles the mock repositories behind a test server.
type testRepos struct {
	snippets      *MockSnippetRepository
	engagements   *MockEngagementRepository
	counters      *MockCounterRepository
	comments      *MockCommentRepository
	notifications *MockNotificationRepository
	users         *MockUserRepository
}

// newTestServer builds a Server over mock repositories with no Redis and no
// event publishing, plus a middleware that authenticates requests as "ada".
func newTestServer() (*fiber.App, *Server, *testRepos) {
	repos := &testRepos{
		snippets:      new(MockSnippetRepository),
		engagements:   new(MockEngagementRepository),
		counters:      new(MockCounterRepository),
		comments:      new(MockCommentRepository),
		notifications: new(MockNotificationRepository),
		users:         new(MockUserRepository),
	}

	s := &Server{
		snippetRepo:      repos.snippets,
		engagementRepo:   repos.engagements,
		counterRepo:      repos.counters,
		commentRepo:      repos.comments,
		notificationRepo: repos.notifications,
		userRepo:         repos.users,
	}
	s.snippetService = service.NewSnippetService(repos.snippets, repos.comments, nil)
	s.engagementService = service.NewEngagementService(repos.snippets, repos.engagements, repos.counters, nil)
	s.commentService = service.NewCommentService(repos.comments, repos.snippets, repos.counters, nil)
	s.notificationService = service.NewNotificationService(repos.notifications)
	s.userService = service.NewUserService(repos.users, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("handle", "ada")
		c.Locals("imageURL", "https://img.example/ada.png")
		return c.Next()
	})

	return app, s, repos
}
