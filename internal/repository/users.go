package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/potatophant/magnifier/internal/models"
)

// Users stores local user records keyed by external-account username.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, record *models.User) (*models.User, error)
	TrackSuccessfulLogin(ctx context.Context, username string, at time.Time) error
	ReplaceSettings(ctx context.Context, username string, settings map[string]any) error

	// SetBanned is the moderation hook; the auth core only ever reads the
	// flag.
	SetBanned(ctx context.Context, username string, banned bool) error

	// Lock serializes read-modify-write sequences for a single username.
	// The returned func releases the lock.
	Lock(username string) func()
}

type users struct {
	db    *bun.DB
	locks sync.Map // username -> *sync.Mutex
}

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

// GetByUsername returns (nil, nil) when no record exists.
func (r *users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	record := &models.User{}
	err := r.db.NewSelect().
		Model(record).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return record, nil
}

func (r *users) Create(ctx context.Context, record *models.User) (*models.User, error) {
	prepareUserDefaults(record)

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *users) TrackSuccessfulLogin(ctx context.Context, username string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_login = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("username = ?", username).
		Exec(ctx)

	return err
}

// ReplaceSettings swaps the settings blob wholesale. There are no
// partial-merge semantics.
func (r *users) ReplaceSettings(ctx context.Context, username string, settings map[string]any) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("settings = ?", settings).
		Set("updated_at = ?", time.Now()).
		Where("username = ?", username).
		Exec(ctx)

	return err
}

func (r *users) SetBanned(ctx context.Context, username string, banned bool) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_banned = ?", banned).
		Set("updated_at = ?", time.Now()).
		Where("username = ?", username).
		Exec(ctx)

	return err
}

func (r *users) Lock(username string) func() {
	v, _ := r.locks.LoadOrStore(username, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func prepareUserDefaults(record *models.User) {
	if record == nil {
		return
	}

	// IDs derive from the username, so re-provisioning the same external
	// account yields the same primary key.
	if record.ID == uuid.Nil {
		if id, err := hashid.NewUUID(record.Username); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}

	if record.Settings == nil {
		record.Settings = map[string]any{}
	}
}
