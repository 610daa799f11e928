package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/domain"
	"github.com/Skotchmaster/food_delivery/internal/models"
)

var userColumns = []string{"id", "email", "password_hash", "role"}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormRepo) findUser(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Select(userColumns).Where(cond, arg).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
