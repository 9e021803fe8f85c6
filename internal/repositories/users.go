package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/apperrors"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/models"
)

const uniqueViolation = "23505"

// UserRepository runs every operation inside the caller's Session. It never
// opens or closes sessions itself.
type UserRepository interface {
	List(ctx context.Context, s *Session) ([]models.User, error)
	Get(ctx context.Context, s *Session, rawID string) (*models.User, error)
	Create(ctx context.Context, s *Session, in models.UserSchema) (*models.User, error)
}

type UserStore struct {
	newID func() (uuid.UUID, error)
	clock func() time.Time
}

var _ UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{newID: uuid.NewRandom, clock: now}
}

// List returns every user in insertion order.
func (st *UserStore) List(ctx context.Context, s *Session) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.DB(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (st *UserStore) Get(ctx context.Context, s *Session, rawID string) (*models.User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.Validation("invalid user id", map[string]string{"user_id": "must be a valid UUID"})
	}

	var u models.User
	if err := s.DB(ctx).Where("uuid = ?", id).Take(&u).Error; err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// Create assigns a fresh external id and commits the row before returning.
func (st *UserStore) Create(ctx context.Context, s *Session, in models.UserSchema) (*models.User, error) {
	id, err := st.newID()
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	ts := st.clock()
	u := &models.User{
		UUID:      id,
		Username:  in.Username,
		Email:     in.Email,
		FullName:  in.FullName,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err = s.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(u).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	return u, nil
}

func classify(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("user not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("user already exists", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.Conflict("user already exists", err)
	}
	return apperrors.Storage(err)
}
