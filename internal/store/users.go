package store

import (
	"context"

	"pos-backend/internal/models"
)

func (s *Store) FindUser(ctx context.Context, id uint) (*models.User, error) {
	return find[models.User](ctx, s, id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Where("email = ?", email).Limit(1).Find(&users).Error; err != nil {
		return nil, read(err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (s *Store) HasSuperuser(ctx context.Context) (bool, error) {
	return exists(s.conn(ctx).Model(&models.User{}).Where("is_superuser = ?", true))
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.Create(ctx, u)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, read(err)
	}
	return users, nil
}

func (s *Store) OwnedRestaurantIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&models.Restaurant{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, read(err)
	}
	return ids, nil
}
