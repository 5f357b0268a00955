package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/potatophant/magnifier/internal/models"
)

// AuthCodes stores pending and consumed one-time codes.
type AuthCodes interface {
	Create(ctx context.Context, code string) (*models.AuthCode, error)
	FindPending(ctx context.Context, code string) (*models.AuthCode, error)
	Consume(ctx context.Context, code string) (bool, error)
}

type authCodes struct {
	db *bun.DB
}

func NewAuthCodesRepository(db *bun.DB) AuthCodes {
	return &authCodes{db: db}
}

func (r *authCodes) Create(ctx context.Context, code string) (*models.AuthCode, error) {
	record := &models.AuthCode{
		ID:   uuid.New(),
		Code: code,
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

// FindPending returns the record for code only while it is still unused.
// A missing or already consumed code yields (nil, nil); the caller does not
// get to distinguish the two.
func (r *authCodes) FindPending(ctx context.Context, code string) (*models.AuthCode, error) {
	record := &models.AuthCode{}
	err := r.db.NewSelect().
		Model(record).
		Where("code = ? AND has_been_used = FALSE", code).
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

// Consume flips has_been_used in a single statement so that exactly one of
// any number of concurrent callers observes the transition. Returns whether
// this caller won it.
func (r *authCodes) Consume(ctx context.Context, code string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.AuthCode)(nil)).
		Set("has_been_used = TRUE").
		Where("code = ? AND has_been_used = FALSE", code).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
