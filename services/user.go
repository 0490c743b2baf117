package services

import (
	"context"
	"errors"
	"strings"

	"foodhub-api/apperror"
	"foodhub-api/models"
	"foodhub-api/repository"

	"gorm.io/gorm"
)

// UserService backs the customer directory
type UserService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// ProfileIn holds the only fields a user may change about themselves
type ProfileIn struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=120"`
	Phone   *string `json:"phone" binding:"omitempty,max=30"`
	Address *string `json:"address" binding:"omitempty,max=500"`
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	return users, apperror.FromDB(err, "")
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "User not found")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileIn) (*models.User, error) {
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		in.Name = &v
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.store.FindUserByID(ctx, id); err != nil {
		return nil, apperror.FromDB(err, "User not found")
	}

	fields := map[string]interface{}{}
	setIf(fields, "name", in.Name)
	setIf(fields, "phone", in.Phone)
	setIf(fields, "address", in.Address)
	if len(fields) > 0 {
		if _, err := s.store.UpdateUserProfile(ctx, id, fields); err != nil {
			return nil, apperror.FromDB(err, "")
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a user and their cart. Users who still own orders or a provider
// profile are kept so order history stays attributable.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.FindUserByID(ctx, id); err != nil {
			return apperror.FromDB(err, "User not found")
		}
		orders, err := tx.CountOrdersByCustomer(ctx, id)
		if err != nil {
			return err
		}
		if orders > 0 {
			return apperror.Conflict("User has orders and cannot be deleted")
		}
		_, err = tx.FindProviderByID(ctx, id)
		if err == nil {
			return apperror.Conflict("User owns a provider profile; delete it first")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.DeleteCartOf(ctx, id); err != nil {
			return err
		}
		_, err = tx.DeleteUser(ctx, id)
		return err
	})
	return apperror.FromDB(err, "")
}
