package dao

import (
	"context"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/model"

	"gorm.io/gorm"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:       m.UID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).
		Where("uid = ? AND is_deleted = ?", uid, false).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", email, false).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := &model.User{
		Email:    user.Email,
		Username: user.Username,
		Password: user.Password,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, uid int64, password string) error {
	res := r.dao.db.WithContext(ctx).Model(&model.User{}).
		Where("uid = ? AND is_deleted = ?", uid, false).
		Update("password", password)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
