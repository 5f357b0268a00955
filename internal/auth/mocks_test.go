package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/mock"

	"github.com/potatophant/magnifier/internal/models"
	"github.com/potatophant/magnifier/internal/scratch"
)

// scratchUnavailableErr mirrors the error shape the comment feed client
// produces on transport failure.
func scratchUnavailableErr() error {
	return errors.Wrap(fmt.Errorf("connection refused"), errors.CategoryOperation, "comment feed request failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(scratch.TextCodeUpstreamUnavailable)
}

// MockAuthCodes implements repository.AuthCodes for testing
type MockAuthCodes struct {
	mock.Mock
}

func (m *MockAuthCodes) Create(ctx context.Context, code string) (*models.AuthCode, error) {
	args := m.Called(ctx, code)
	var record *models.AuthCode
	if v := args.Get(0); v != nil {
		record = v.(*models.AuthCode)
	}
	return record, args.Error(1)
}

func (m *MockAuthCodes) FindPending(ctx context.Context, code string) (*models.AuthCode, error) {
	args := m.Called(ctx, code)
	var record *models.AuthCode
	if v := args.Get(0); v != nil {
		record = v.(*models.AuthCode)
	}
	return record, args.Error(1)
}

func (m *MockAuthCodes) Consume(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockUsers implements repository.Users for testing
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	var record *models.User
	if v := args.Get(0); v != nil {
		record = v.(*models.User)
	}
	return record, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *models.User) (*models.User, error) {
	args := m.Called(ctx, record)
	var created *models.User
	if v := args.Get(0); v != nil {
		created = v.(*models.User)
	}
	return created, args.Error(1)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, username string, at time.Time) error {
	args := m.Called(ctx, username, at)
	return args.Error(0)
}

func (m *MockUsers) ReplaceSettings(ctx context.Context, username string, settings map[string]any) error {
	args := m.Called(ctx, username, settings)
	return args.Error(0)
}

func (m *MockUsers) SetBanned(ctx context.Context, username string, banned bool) error {
	args := m.Called(ctx, username, banned)
	return args.Error(0)
}

func (m *MockUsers) Lock(username string) func() {
	m.Called(username)
	return func() {}
}

// MockCommentSource implements auth.CommentSource for testing
type MockCommentSource struct {
	mock.Mock
}

func (m *MockCommentSource) FindCommentByContent(ctx context.Context, content string) (*scratch.Comment, error) {
	args := m.Called(ctx, content)
	var comment *scratch.Comment
	if v := args.Get(0); v != nil {
		comment = v.(*scratch.Comment)
	}
	return comment, args.Error(1)
}
