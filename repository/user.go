package repository

import (
	"context"

	"foodhub-api/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Create(u).Error
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("verification_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// MarkEmailVerified flips the flag and burns the token
func (s *Store) MarkEmailVerified(ctx context.Context, userID uint) error {
	return s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"email_verified": true, "verification_token": nil}).Error
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Order("id asc").Find(&users).Error
	return users, err
}

// UpdateUserProfile writes only the given columns; RowsAffected == 0 means no such user
func (s *Store) UpdateUserProfile(ctx context.Context, userID uint, fields map[string]interface{}) (int64, error) {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteUser(ctx context.Context, userID uint) (int64, error) {
	res := s.conn(ctx).Where("id = ?", userID).Delete(&models.User{})
	return res.RowsAffected, res.Error
}
