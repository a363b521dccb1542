package services

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

// UserService handles registration and credential checks
type UserService struct {
	userRepo *repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a user with a bcrypt-hashed password
func (s *UserService) Register(email, name, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, models.NewValidationError("password", "Password must be at least 8 characters")
	}

	user := models.NewUser(email, name)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("email", "An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.WithField("user_id", user.ID.String()).Info("User registered")
	return user, nil
}

// Authenticate checks a credential pair and returns the user. The same
// validation error comes back whether the email or the password was
// wrong.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("credentials", "Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, models.NewValidationError("credentials", "Invalid email or password")
	}
	return user, nil
}

// GetByID returns a user by id
func (s *UserService) GetByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &models.NotFoundError{Resource: "user", ID: id}
	}
	return user, nil
}
