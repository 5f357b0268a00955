package repository

import (
	"context"
	"errors"
	"log"

	"github.com/uptrace/bun"

	"github.com/potatophant/magnifier/internal/models"
)

// Manager exposes all repositories.
type Manager interface {
	Users() Users
	AuthCodes() AuthCodes

	Validate() error
	MustValidate()

	// Init creates the backing tables when they do not exist yet.
	Init(ctx context.Context) error
}

type mngr struct {
	db        *bun.DB
	users     Users
	authCodes AuthCodes
}

func NewManager(db *bun.DB) Manager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		authCodes: NewAuthCodesRepository(db),
	}
}

func (m *mngr) Users() Users {
	return m.users
}

func (m *mngr) AuthCodes() AuthCodes {
	return m.authCodes
}

func (m *mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.authCodes == nil {
		return errors.New("repository authCodes should be initialized")
	}

	return nil
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *mngr) Init(ctx context.Context) error {
	for _, model := range []any{
		(*models.User)(nil),
		(*models.AuthCode)(nil),
	} {
		if _, err := m.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
