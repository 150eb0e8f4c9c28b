package services

import (
	"context"
	"strings"

	"github.com/markdave123-py/Moleqa/internal/core"
	"github.com/markdave123-py/Moleqa/internal/models"
	"github.com/markdave123-py/Moleqa/internal/schema"
)

type UserService struct {
	db      core.DbClient
	metrics *Metrics
}

func NewUserService(db core.DbClient, metrics *Metrics) *UserService {
	return &UserService{db: db, metrics: metrics}
}

// Create stores a user. Usernames are not checked for uniqueness.
func (s *UserService) Create(ctx context.Context, input map[string]any) (*models.User, error) {
	in, err := schema.Decode[models.InsertUser](input)
	if err != nil {
		return nil, rephrase(err, "invalid user payload")
	}
	u, err := s.db.CreateUser(ctx, in)
	if err != nil {
		return nil, internal("create user", err)
	}
	s.metrics.userCreated()
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, internal("get user", err)
	}
	if u == nil {
		return nil, notFound("User", id)
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, schema.Invalid("username query parameter is required", schema.FieldError{Field: "username", Reason: schema.ReasonMissing})
	}
	u, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, internal("get user by username", err)
	}
	if u == nil {
		return nil, notFound("User", username)
	}
	return u, nil
}
