package dao

import (
	"context"
	"time"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:        m.ID,
		UID:       m.UID,
		Title:     m.Title,
		Content:   m.Content,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *noteRepository) toModel(d *domain.Note) *model.Note {
	if d == nil {
		return nil
	}
	return &model.Note{
		ID:        d.ID,
		UID:       d.UID,
		Title:     d.Title,
		Content:   d.Content,
		IsDeleted: d.IsDeleted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *noteRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.Note, error) {
	var m model.Note
	err := r.dao.db.WithContext(ctx).
		Where("id = ? AND uid = ? AND is_deleted = ?", id, uid, false).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *noteRepository) GetByIDPublic(ctx context.Context, id string) (*domain.Note, error) {
	var m model.Note
	err := r.dao.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *noteRepository) UpdateContent(ctx context.Context, id string, uid int64, title, content string) error {
	res := r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND uid = ? AND is_deleted = ?", id, uid, false).
		Updates(map[string]interface{}{
			"title":   title,
			"content": content,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *noteRepository) SoftDelete(ctx context.Context, id string, uid int64) error {
	res := r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND uid = ? AND is_deleted = ?", id, uid, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *noteRepository) List(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	var ms []*model.Note
	q := r.dao.db.WithContext(ctx).
		Where("uid = ? AND is_deleted = ?", uid, false).
		Order("updated_at DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	notes := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		notes = append(notes, r.toDomain(m))
	}
	return notes, nil
}

func (r *noteRepository) ListCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Where("uid = ? AND is_deleted = ?", uid, false).
		Count(&count).Error
	return count, err
}

func (r *noteRepository) PurgeDeletedBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.dao.db.WithContext(ctx).
		Where("is_deleted = ? AND updated_at < ?", true, before).
		Delete(&model.Note{})
	return res.RowsAffected, res.Error
}
