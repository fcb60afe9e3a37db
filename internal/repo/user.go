package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

// CreateUser inserts the user and its empty wallet in one transaction.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		var count int64
		if err := tx.DB.WithContext(ctx).Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserAlreadyExist
		}
		if err := tx.DB.WithContext(ctx).Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserAlreadyExist
			}
			return err
		}
		return tx.CreateBalance(ctx, u.ID)
	})
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LockUser reads the user row with SELECT ... FOR UPDATE.
func (r *GormRepo) LockUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Clauses(forUpdate()).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SetActiveOrder(ctx context.Context, userID uint, orderID *uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("active_order_id", orderID).Error
}

func (r *GormRepo) UpdateAccount(ctx context.Context, userID uint, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetUser(ctx, userID)
}
