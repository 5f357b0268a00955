package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"

	"github.com/potatophant/magnifier/internal/logging"
	"github.com/potatophant/magnifier/internal/models"
	"github.com/potatophant/magnifier/internal/repository"
	"github.com/potatophant/magnifier/internal/scratch"
)

// CommentSource looks up a confirming comment by its exact content. It is an
// interface so the full-feed scan the Scratch client performs today can be
// swapped for an indexed or time-windowed lookup later.
type CommentSource interface {
	FindCommentByContent(ctx context.Context, content string) (*scratch.Comment, error)
}

// VerifierConfig carries the issuance policy knobs.
type VerifierConfig struct {
	// PrivilegedUsername is the single external account that receives
	// elevated claims at account creation.
	PrivilegedUsername string

	// BannedUsernames is the moderation ban list checked before any user
	// lookup or mutation.
	BannedUsernames []string

	Logger logging.Logger
	Now    func() time.Time
}

// Verifier reconciles a pending auth code against the external comment feed
// and produces an authentication decision.
type Verifier struct {
	codes  repository.AuthCodes
	users  repository.Users
	source CommentSource
	tokens TokenService

	privilegedUsername string
	banned             map[string]struct{}
	logger             logging.Logger
	now                func() time.Time
}

func NewVerifier(codes repository.AuthCodes, users repository.Users, source CommentSource, tokens TokenService, cfg VerifierConfig) *Verifier {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefLogger{}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	banned := make(map[string]struct{}, len(cfg.BannedUsernames))
	for _, username := range cfg.BannedUsernames {
		banned[username] = struct{}{}
	}

	return &Verifier{
		codes:              codes,
		users:              users,
		source:             source,
		tokens:             tokens,
		privilegedUsername: cfg.PrivilegedUsername,
		banned:             banned,
		logger:             logger,
		now:                now,
	}
}

// VerifyAndIssue runs the full verification algorithm for code and returns a
// signed session token on success. Failures carry their HTTP status:
// 401 when the code is unknown or consumed, 400 when it is pending but not
// yet confirmed by a comment, 403 when the commenting account is banned, and
// 502 when the comment feed cannot be read. No internal retries; a 400 is
// the caller's cue to poll again.
func (v *Verifier) VerifyAndIssue(ctx context.Context, code string) (string, error) {
	pending, err := v.codes.FindPending(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "auth code lookup failed")
	}
	if pending == nil {
		return "", ErrCodeUnknown
	}

	// A feed failure past this point must not mutate anything, so the used
	// flag flips only after a confirmed match.
	comment, err := v.source.FindCommentByContent(ctx, code)
	if err != nil {
		return "", err
	}
	if comment == nil {
		return "", ErrCodeNotConfirmed
	}

	won, err := v.codes.Consume(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "auth code consume failed")
	}
	if !won {
		// A concurrent verification beat us to the transition.
		return "", ErrCodeUnknown
	}

	username := comment.Author.Username
	if v.isBanned(username) {
		v.logger.Warn("verification rejected for banned account", "username", username)
		return "", ErrAccountBanned
	}

	unlock := v.users.Lock(username)
	defer unlock()

	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	if user == nil {
		user = &models.User{
			Username:     username,
			Author:       comment.Author.Payload(),
			IsPrivileged: username == v.privilegedUsername,
		}

		if user, err = v.users.Create(ctx, user); err != nil {
			return "", errors.Wrap(err, errors.CategoryInternal, "user creation failed")
		}

		v.logger.Info("provisioned user on first login", "username", username, "privileged", user.IsPrivileged)
	} else if user.IsBanned {
		v.logger.Warn("verification rejected for banned user record", "username", username)
		return "", ErrAccountBanned
	}

	if err := v.users.TrackSuccessfulLogin(ctx, username, v.now()); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "login tracking failed")
	}

	token, err := v.tokens.Issue(code, username, user.IsPrivileged)
	if err != nil {
		return "", err
	}

	v.logger.Info("issued session token", "username", username)

	return token, nil
}

func (v *Verifier) isBanned(username string) bool {
	_, ok := v.banned[username]
	return ok
}
