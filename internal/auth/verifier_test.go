package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/potatophant/magnifier/internal/auth"
	"github.com/potatophant/magnifier/internal/models"
	"github.com/potatophant/magnifier/internal/scratch"
)

const testCode = "BkrTwfGnZpQsVxMjLdHcYrBtNkWzFsGmPq36"

func newTestTokenService(t *testing.T) auth.TokenService {
	t.Helper()
	return auth.NewTokenService([]byte("test-signing-key-0123456789"), 1, "magnifier-test", nil, nil)
}

func pendingCode(code string) *models.AuthCode {
	return &models.AuthCode{Code: code}
}

func commentBy(username, content string) *scratch.Comment {
	return &scratch.Comment{
		ID:      101,
		Content: content,
		Author: scratch.Author{
			ID:       9001,
			Username: username,
		},
		DatetimeCreated: time.Now(),
	}
}

func TestVerifyAndIssue_FirstLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}
	tokens := newTestTokenService(t)

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(commentBy("alice", testCode), nil)
	codes.On("Consume", ctx, testCode).Return(true, nil)
	users.On("Lock", "alice").Return()
	users.On("GetByUsername", ctx, "alice").Return(nil, nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && !u.IsPrivileged && u.Author["username"] == "alice"
	})).Return(&models.User{Username: "alice"}, nil)
	users.On("TrackSuccessfulLogin", ctx, "alice", now).Return(nil)

	verifier := auth.NewVerifier(codes, users, source, tokens, auth.VerifierConfig{
		PrivilegedUsername: "potatophant",
		Now:                func() time.Time { return now },
	})

	token, err := verifier.VerifyAndIssue(ctx, testCode)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, testCode, claims.Code)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsPrivileged)

	codes.AssertExpectations(t)
	users.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestVerifyAndIssue_PrivilegedProvisioning(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}
	tokens := newTestTokenService(t)

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(commentBy("potatophant", testCode), nil)
	codes.On("Consume", ctx, testCode).Return(true, nil)
	users.On("Lock", "potatophant").Return()
	users.On("GetByUsername", ctx, "potatophant").Return(nil, nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "potatophant" && u.IsPrivileged
	})).Return(&models.User{Username: "potatophant", IsPrivileged: true}, nil)
	users.On("TrackSuccessfulLogin", ctx, "potatophant", mock.AnythingOfType("time.Time")).Return(nil)

	verifier := auth.NewVerifier(codes, users, source, tokens, auth.VerifierConfig{
		PrivilegedUsername: "potatophant",
	})

	token, err := verifier.VerifyAndIssue(ctx, testCode)
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.IsPrivileged)

	users.AssertExpectations(t)
}

func TestVerifyAndIssue_UnknownCode(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}

	codes.On("FindPending", ctx, testCode).Return(nil, nil)

	verifier := auth.NewVerifier(codes, users, source, newTestTokenService(t), auth.VerifierConfig{})

	_, err := verifier.VerifyAndIssue(ctx, testCode)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, auth.HTTPStatus(err))

	source.AssertNotCalled(t, "FindCommentByContent", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestVerifyAndIssue_NotYetConfirmed(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(nil, nil)

	verifier := auth.NewVerifier(codes, users, source, newTestTokenService(t), auth.VerifierConfig{})

	t.Run("returns 400 and leaves the code pending", func(t *testing.T) {
		_, err := verifier.VerifyAndIssue(ctx, testCode)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, auth.HTTPStatus(err))

		codes.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("is repeatable without side effects", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := verifier.VerifyAndIssue(ctx, testCode)
			assert.Equal(t, http.StatusBadRequest, auth.HTTPStatus(err))
		}
		codes.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
	})
}

func TestVerifyAndIssue_ConsumeRaceLoser(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(commentBy("alice", testCode), nil)
	codes.On("Consume", ctx, testCode).Return(false, nil)

	verifier := auth.NewVerifier(codes, users, source, newTestTokenService(t), auth.VerifierConfig{})

	_, err := verifier.VerifyAndIssue(ctx, testCode)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, auth.HTTPStatus(err))

	users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "TrackSuccessfulLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyAndIssue_BannedByList(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(commentBy("eve", testCode), nil)
	codes.On("Consume", ctx, testCode).Return(true, nil)

	verifier := auth.NewVerifier(codes, users, source, newTestTokenService(t), auth.VerifierConfig{
		BannedUsernames: []string{"eve"},
	})

	_, err := verifier.VerifyAndIssue(ctx, testCode)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, auth.HTTPStatus(err))

	// The ban is checked before any user lookup or mutation.
	users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyAndIssue_BannedExistingUser(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(commentBy("mallory", testCode), nil)
	codes.On("Consume", ctx, testCode).Return(true, nil)
	users.On("Lock", "mallory").Return()
	users.On("GetByUsername", ctx, "mallory").Return(&models.User{Username: "mallory", IsBanned: true}, nil)

	verifier := auth.NewVerifier(codes, users, source, newTestTokenService(t), auth.VerifierConfig{})

	_, err := verifier.VerifyAndIssue(ctx, testCode)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, auth.HTTPStatus(err))

	users.AssertNotCalled(t, "TrackSuccessfulLogin", mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyAndIssue_UpstreamUnavailable(t *testing.T) {
	ctx := context.Background()

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).
		Return(nil, scratchUnavailableErr())

	verifier := auth.NewVerifier(codes, users, source, newTestTokenService(t), auth.VerifierConfig{})

	_, err := verifier.VerifyAndIssue(ctx, testCode)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, auth.HTTPStatus(err))

	// A feed failure must not mutate the code or any user record.
	codes.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyAndIssue_ExistingUserTracksLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)

	codes := &MockAuthCodes{}
	users := &MockUsers{}
	source := &MockCommentSource{}
	tokens := newTestTokenService(t)

	existing := &models.User{Username: "potatophant", IsPrivileged: true}

	codes.On("FindPending", ctx, testCode).Return(pendingCode(testCode), nil)
	source.On("FindCommentByContent", ctx, testCode).Return(commentBy("potatophant", testCode), nil)
	codes.On("Consume", ctx, testCode).Return(true, nil)
	users.On("Lock", "potatophant").Return()
	users.On("GetByUsername", ctx, "potatophant").Return(existing, nil)
	users.On("TrackSuccessfulLogin", ctx, "potatophant", now).Return(nil)

	verifier := auth.NewVerifier(codes, users, source, tokens, auth.VerifierConfig{
		PrivilegedUsername: "potatophant",
		Now:                func() time.Time { return now },
	})

	token, err := verifier.VerifyAndIssue(ctx, testCode)
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.IsPrivileged)

	// Privilege is carried from the stored record, not re-derived.
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}
