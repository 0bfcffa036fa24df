package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"github.com/yukikurage/kanban-board-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles identity related business logic.
type AuthService struct {
	userRepo        repository.UserRepository
	hasher          *utils.PasswordHasher
	defaultPassword string
	// dummyHash is verified against when the username is unknown so both
	// failure paths cost one hash comparison.
	dummyHash string
}

// NewAuthService creates a new AuthService. defaultPassword is the credential
// given to auto-provisioned assignees.
func NewAuthService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, defaultPassword string) *AuthService {
	dummyHash, _ := hasher.Hash("kanban-dummy-credential")
	return &AuthService{
		userRepo:        userRepo,
		hasher:          hasher,
		defaultPassword: defaultPassword,
		dummyHash:       dummyHash,
	}
}

// CreateUserInput represents the required information to create a new user.
type CreateUserInput struct {
	Username string
	Password string
	Role     models.Role
}

// Signup registers a baseline user.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		Username: username,
		Password: password,
		Role:     models.BaselineRole,
	})
}

// CreateUser creates a user with the given role.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user, created, err := s.userRepo.CreateIfAbsent(ctx, &models.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         input.Role,
	})
	if err != nil {
		return nil, storageError("create user", err)
	}
	if !created {
		return nil, ErrUsernameTaken
	}

	return user, nil
}

// Authenticate verifies credentials. Unknown usernames and wrong passwords
// produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("find user", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces the user's own password after checking the current
// one, and clears the forced-reset flag.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if _, err := s.Authenticate(ctx, username, currentPassword); err != nil {
		return err
	}
	return s.setPassword(ctx, username, newPassword, false)
}

// ResetPassword is the administrative reset. The new password is temporary:
// the user must change it at the next login.
func (s *AuthService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	return s.setPassword(ctx, username, newPassword, true)
}

func (s *AuthService) setPassword(ctx context.Context, username, newPassword string, mustChange bool) error {
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(ctx, username, hashed, mustChange); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageError("update password", err)
	}
	return nil
}

// AutoProvision returns the named user, creating a baseline account with the
// default password if it does not exist yet.
func (s *AuthService) AutoProvision(ctx context.Context, username string) (*models.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	template, err := s.ProvisionTemplate()
	if err != nil {
		return nil, err
	}
	template.Username = username

	user, _, err := s.userRepo.CreateIfAbsent(ctx, &template)
	if err != nil {
		return nil, storageError("provision user", err)
	}
	return user, nil
}

// ProvisionTemplate is the user row an unknown assignee is created from.
func (s *AuthService) ProvisionTemplate() (models.User, error) {
	hashed, err := s.hasher.Hash(s.defaultPassword)
	if err != nil {
		return models.User{}, ErrFailedToHashPassword
	}
	return models.User{
		PasswordHash:       hashed,
		Role:               models.BaselineRole,
		MustChangePassword: true,
	}, nil
}

// EnsureBootstrapAdmin creates an Admin account unless the username exists.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return false, err
	}
	if err := validatePassword(password); err != nil {
		return false, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return false, ErrFailedToHashPassword
	}

	_, created, err := s.userRepo.CreateIfAbsent(ctx, &models.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return false, storageError("bootstrap admin", err)
	}
	return created, nil
}

// GetUser retrieves a user by username.
func (s *AuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find user", err)
	}

	return user, nil
}

// ListUsers returns a page of users.
func (s *AuthService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, storageError("list users", err)
	}
	return users, total, nil
}

func validatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return fmt.Errorf("%w (max %d bytes)", ErrPasswordTooLong, constants.MaxPasswordLength)
	}
	return nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", ErrUsernameRequired
	}
	if len(username) > constants.MaxUsernameLength {
		return "", fmt.Errorf("%w (max %d)", ErrUsernameTooLong, constants.MaxUsernameLength)
	}
	return username, nil
}
