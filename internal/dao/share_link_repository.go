package dao

import (
	"context"
	"time"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/model"

	"gorm.io/gorm"
)

// shareLinkRepository 实现 domain.ShareLinkRepository 接口
type shareLinkRepository struct {
	dao *Dao
}

// NewShareLinkRepository 创建 ShareLinkRepository 实例
func NewShareLinkRepository(dao *Dao) domain.ShareLinkRepository {
	return &shareLinkRepository{dao: dao}
}

func (r *shareLinkRepository) toDomain(m *model.ShareLink) *domain.ShareLink {
	if m == nil {
		return nil
	}
	return &domain.ShareLink{
		ID:           m.ID,
		Token:        m.Token,
		NoteID:       m.NoteID,
		UID:          m.UID,
		IsActive:     m.IsActive,
		ViewCount:    m.ViewCount,
		LastViewedAt: m.LastViewedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *shareLinkRepository) Create(ctx context.Context, share *domain.ShareLink) error {
	m := &model.ShareLink{
		Token:        share.Token,
		NoteID:       share.NoteID,
		UID:          share.UID,
		IsActive:     share.IsActive,
		ViewCount:    share.ViewCount,
		LastViewedAt: share.LastViewedAt,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	share.ID = m.ID // 回填生成的 ID
	share.CreatedAt = m.CreatedAt
	return nil
}

func (r *shareLinkRepository) GetByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	var m model.ShareLink
	err := r.dao.db.WithContext(ctx).
		Where("token = ?", token).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *shareLinkRepository) GetByNoteID(ctx context.Context, noteID string, uid int64) (*domain.ShareLink, error) {
	var m model.ShareLink
	err := r.dao.db.WithContext(ctx).
		Where("note_id = ? AND uid = ?", noteID, uid).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *shareLinkRepository) SetActive(ctx context.Context, token string, uid int64, active bool) error {
	res := r.dao.db.WithContext(ctx).Model(&model.ShareLink{}).
		Where("token = ? AND uid = ?", token, uid).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shareLinkRepository) UpdateViewStats(ctx context.Context, token string, viewCountIncr int64, lastViewedAt time.Time) error {
	return r.dao.db.WithContext(ctx).Model(&model.ShareLink{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + ?", viewCountIncr),
			"last_viewed_at": lastViewedAt,
		}).Error
}

func (r *shareLinkRepository) ListByUID(ctx context.Context, uid int64) ([]*domain.ShareLink, error) {
	var ms []*model.ShareLink
	err := r.dao.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	shares := make([]*domain.ShareLink, 0, len(ms))
	for _, m := range ms {
		shares = append(shares, r.toDomain(m))
	}
	return shares, nil
}
