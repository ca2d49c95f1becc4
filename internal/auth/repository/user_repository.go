package repository

import (
	"errors"
	"time"

	authdomain "storymail-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(user *authdomain.User) error
	Update(user *authdomain.User) error
	FindByAuth0ID(auth0ID string) (*authdomain.User, error)
	FindByEmail(email string) (*authdomain.User, error)
	// UpsertByAuth0ID creates or refreshes the local record for a verified claim set.
	UpsertByAuth0ID(claims *authdomain.Claims) (*authdomain.User, error)
	// FindOrCreateByEmail resolves the owner of an inbound email, creating a
	// placeholder user (Auth0ID = email) when the address is unseen.
	FindOrCreateByEmail(email string) (*authdomain.User, bool, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) Update(user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

func (r *userRepository) FindByAuth0ID(auth0ID string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("auth0_id = ?", auth0ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpsertByAuth0ID(claims *authdomain.Claims) (*authdomain.User, error) {
	user, err := r.FindByAuth0ID(claims.Subject)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			Auth0ID: claims.Subject,
			Name:    claims.Name,
			Email:   claims.Email,
			Picture: claims.Picture,
		}
		if err := r.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.Name = claims.Name
	user.Email = claims.Email
	user.Picture = claims.Picture
	if err := r.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindOrCreateByEmail(email string) (*authdomain.User, bool, error) {
	user, err := r.FindByEmail(email)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		return user, false, nil
	}

	user = &authdomain.User{
		Auth0ID: email, // fallback if no auth0_id
		Email:   email,
	}
	if err := r.Create(user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
