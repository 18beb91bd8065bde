package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo  domain.UserRepository
	hasher    domain.PasswordHasher
	issuer    domain.TokenIssuer
	email     domain.EmailService
	logger    *slog.Logger
	jwtExpiry time.Duration
}

// NewUserService creates the account and administration service.
func NewUserService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	email domain.EmailService,
	logger *slog.Logger,
	jwtExpiry time.Duration,
) domain.UserService {
	return &userService{
		userRepo:  userRepo,
		hasher:    hasher,
		issuer:    issuer,
		email:     email,
		logger:    logger,
		jwtExpiry: jwtExpiry,
	}
}

func (s *userService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         domain.RoleUser,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.email.SendWelcomeMessage(ctx, &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.Name}); err != nil {
		s.logger.Warn("welcome email failed", "email", user.Email, "err", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	token, err := s.issuer.Issue(user.ID, user.Email, user.Role, s.jwtExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers is admin-only: managing other users is never granted to
// organisers.
func (s *userService) ListUsers(ctx context.Context, actor *domain.User, p domain.PaginationParams) ([]*domain.User, int, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, 0, domain.ErrForbidden("admin access required")
	}
	users, total, err := s.userRepo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, total, nil
}

func (s *userService) ChangeRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden("admin access required")
	}
	// An admin may not demote themselves; another admin has to do it.
	if actor.ID == userID && role != domain.RoleAdmin {
		return domain.ErrForbidden("cannot remove your own admin role")
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}
	s.logger.Info("role changed", "user_id", userID, "role", role, "by", actor.ID)
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden("admin access required")
	}
	if actor.ID == userID {
		return domain.ErrForbidden("cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
