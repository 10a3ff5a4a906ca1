package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/utils"
	"go.uber.org/zap"
)

const temporaryPasswordLength = 12

// PasswordMailer delivers temporary passwords to new users
type PasswordMailer interface {
	Enabled() bool
	SendTemporaryPassword(toEmail, name, password string) error
}

// UserService handles user management operations
type UserService struct {
	userRepo repository.UserRepository
	mailer   PasswordMailer
	log      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, mailer PasswordMailer, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, mailer: mailer, log: log}
}

// RegisterInput represents the registration input
type RegisterInput struct {
	Name  string
	Email string
	Phone string
	Role  string
}

// RegisterOutput is the created user. TemporaryPassword is only set when the
// password could not be emailed.
type RegisterOutput struct {
	User              *entity.User
	TemporaryPassword string
	EmailSent         bool
}

// Register creates a user with a generated temporary password
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	phone := strings.TrimSpace(input.Phone)
	role := enum.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if role == "" {
		role = enum.RoleBiller
	}

	var fieldErrors []apperror.FieldError
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if err := ValidateEmail(email); err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: err.Error()})
	}
	if err := ValidatePhone(phone); err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "phone", Message: err.Error()})
	}
	if !role.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "role", Message: "Role must be admin or biller"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, apperror.NewInternalError("failed to register user", err)
	} else if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByPhone(ctx, phone); err != nil {
		return nil, apperror.NewInternalError("failed to register user", err)
	} else if existing != nil {
		return nil, apperror.NewConflictError("Phone number already registered")
	}

	password, err := utils.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, apperror.NewInternalError("failed to register user", err)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to register user", err)
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: hashed,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if infraRepo.IsDuplicateKeyErr(err) {
			return nil, apperror.NewConflictError("Email or phone number already registered")
		}
		return nil, apperror.NewInternalError("failed to register user", err)
	}

	out := &RegisterOutput{User: user}
	if s.mailer != nil && s.mailer.Enabled() {
		if err := s.mailer.SendTemporaryPassword(user.Email, user.Name, password); err != nil {
			s.log.Warn("temporary password email failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		} else {
			out.EmailSent = true
		}
	}
	if !out.EmailSent {
		out.TemporaryPassword = password
	}
	return out, nil
}

// ListUsers returns every user, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch users", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// ErrSelfBlock is returned when an admin tries to block their own account
var ErrSelfBlock = apperror.NewBadRequestError("You cannot block your own account")

// ToggleBlock flips the blocked flag of a user
func (s *UserService) ToggleBlock(ctx context.Context, actor Actor, userID uuid.UUID) (*entity.User, error) {
	if actor.ID == userID {
		return nil, ErrSelfBlock
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to update user", err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	user.IsBlocked = !user.IsBlocked
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.NewInternalError("failed to update user", err)
	}

	s.log.Info("user block toggled",
		zap.String("user_id", user.ID.String()),
		zap.Bool("blocked", user.IsBlocked),
		zap.String("by", actor.ID.String()))
	return user, nil
}
