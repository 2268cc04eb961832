package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/betonpro/tradelinkpro/internal/model"
	"github.com/betonpro/tradelinkpro/internal/repository"
	"github.com/betonpro/tradelinkpro/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ResetPasswordInput struct {
	Password string `json:"password" form:"password" binding:"required"`
	Confirm  string `json:"confirm" form:"confirm" binding:"required"`
}

// AdminService covers the admin's rights over user accounts: listing
// and password resets. The admin has no elevated rights over other
// users' suppliers.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ResetPassword(ctx context.Context, id uuid.UUID, input ResetPasswordInput) error
}

type adminService struct {
	repo repository.UserRepository
}

func NewAdminService(repo repository.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		user.PasswordHash = ""
	}
	return users, nil
}

func (s *adminService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminService) ResetPassword(ctx context.Context, id uuid.UUID, input ResetPasswordInput) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if input.Password != input.Confirm {
		return apperror.Validation("Les mots de passe ne correspondent pas.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePasswordHash(ctx, id, string(hashed))
}
