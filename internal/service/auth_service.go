package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/betonpro/tradelinkpro/internal/middleware"
	"github.com/betonpro/tradelinkpro/internal/model"
	"github.com/betonpro/tradelinkpro/internal/repository"
	"github.com/betonpro/tradelinkpro/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RegisterInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Confirm  string `json:"confirm" form:"confirm" binding:"required"`
}

// Session is a freshly issued signed session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Register(ctx context.Context, input RegisterInput, callerIsAdmin bool) (*model.User, error)
	RegistrationOpen(ctx context.Context) (bool, error)
	SessionTTL() time.Duration
}

type authService struct {
	repo   repository.UserRepository
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

func NewAuthService(repo repository.UserRepository, rdb *redis.Client, secret string, ttl time.Duration) AuthService {
	return &authService{
		repo:   repo,
		rdb:    rdb,
		secret: secret,
		ttl:    ttl,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	locked, err := LoginLocked(ctx, s.rdb, input.Username)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, apperror.New(http.StatusTooManyRequests,
			"Trop de tentatives. Réessayez plus tard.", apperror.ErrRateLimited)
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.invalidCredentials(ctx, input.Username)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, s.invalidCredentials(ctx, input.Username)
	}

	if err := ClearFailedLogins(ctx, s.rdb, input.Username); err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

func (s *authService) invalidCredentials(ctx context.Context, username string) error {
	if err := RegisterFailedLogin(ctx, s.rdb, username); err != nil {
		return err
	}
	return apperror.New(http.StatusUnauthorized,
		"Nom d'utilisateur ou mot de passe incorrect.", apperror.ErrUnauthenticated)
}

// Register creates a user account. Allowed only while the user table
// is empty (bootstrap) or when the caller is the admin.
func (s *authService) Register(ctx context.Context, input RegisterInput, callerIsAdmin bool) (*model.User, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 && !callerIsAdmin {
		return nil, apperror.New(http.StatusForbidden,
			"La création de compte est réservée à l'administrateur.", apperror.ErrForbidden)
	}

	if input.Password != input.Confirm {
		return nil, apperror.Validation("Les mots de passe ne correspondent pas.")
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.Validation("Ce nom d'utilisateur est déjà utilisé.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		PasswordHash: string(hashed),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) RegistrationOpen(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *authService) SessionTTL() time.Duration {
	return s.ttl
}

func (s *authService) issueSession(user *model.User) (*Session, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := &middleware.SessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	user.PasswordHash = ""
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
