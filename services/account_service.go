package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"goblog/models"
	"goblog/repositories"
)

// The AccountService interface defines the account operations:
// registration, credential checks, profile edits and password changes.
type AccountService interface {
	Register(input *RegisterInput) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	UpdateAccount(userID uint, input *UpdateAccountInput) (*models.User, error)
	ChangePassword(userID uint, oldPassword, newPassword string) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateAccountInput carries the new profile values. ImageFile is the
// filename the media store returned; equal to the current filename when
// no new picture was uploaded.
type UpdateAccountInput struct {
	Username  string
	Email     string
	ImageFile string
}

type accountService struct {
	users repositories.UserRepository
}

var _ AccountService = (*accountService)(nil)

// NewAccountService creates a new AccountService instance
func NewAccountService(users repositories.UserRepository) AccountService {
	return &accountService{users: users}
}

// Register persists a new user with a bcrypt-hashed password. Duplicate
// username or email (exact match against stored values) fails with the
// corresponding sentinel.
func (s *accountService) Register(input *RegisterInput) (*models.User, error) {
	if _, err := s.users.FindByUsername(input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking username uniqueness: %w", err)
	}

	if _, err := s.users.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking email uniqueness: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashed),
		ImageFile: models.DefaultImageFile,
	}
	if err := s.users.Create(&user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &user, nil
}

// Authenticate looks the user up by email and checks the password hash.
// A missing user and a wrong password are reported distinctly so the
// login view can show the original application's two messages.
func (s *accountService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserMissing
		}
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return user, nil
}

func (s *accountService) GetByID(id uint) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) GetByUsername(username string) (*models.User, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateAccount applies profile changes for the given user. Uniqueness
// checks skip values equal to the user's own current ones, and nothing
// is written when no field actually changed.
func (s *accountService) UpdateAccount(userID uint, input *UpdateAccountInput) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Username != user.Username {
		if _, err := s.users.FindByUsername(input.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking username uniqueness: %w", err)
		}
	}
	if input.Email != user.Email {
		if _, err := s.users.FindByEmail(input.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking email uniqueness: %w", err)
		}
	}

	needsSave := false
	if user.Username != input.Username {
		user.Username = input.Username
		needsSave = true
	}
	if user.Email != input.Email {
		user.Email = input.Email
		needsSave = true
	}
	if input.ImageFile != "" && user.ImageFile != input.ImageFile {
		user.ImageFile = input.ImageFile
		needsSave = true
	}

	if needsSave {
		if err := s.users.Update(user); err != nil {
			return nil, fmt.Errorf("saving account updates: %w", err)
		}
	}
	return user, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (s *accountService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongOldPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("saving new password: %w", err)
	}
	return nil
}
