package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/pkg/app"

	"gorm.io/gorm"
)

// memNoteRepo 内存实现，供服务层测试使用
type memNoteRepo struct {
	mu     sync.Mutex
	notes  map[string]*domain.Note
	nextID int
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: make(map[string]*domain.Note)}
}

func (r *memNoteRepo) clone(n *domain.Note) *domain.Note {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

func (r *memNoteRepo) GetByID(ctx context.Context, id string, uid int64) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.UID != uid || n.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return r.clone(n), nil
}

func (r *memNoteRepo) GetByIDPublic(ctx context.Context, id string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.clone(n), nil
}

func (r *memNoteRepo) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.clone(note)
	if n.ID == "" {
		r.nextID++
		n.ID = "note-" + strconv.Itoa(r.nextID)
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	r.notes[n.ID] = n
	return r.clone(n), nil
}

func (r *memNoteRepo) UpdateContent(ctx context.Context, id string, uid int64, title, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.UID != uid || n.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	n.Title = title
	n.Content = content
	n.UpdatedAt = time.Now()
	return nil
}

func (r *memNoteRepo) SoftDelete(ctx context.Context, id string, uid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.UID != uid || n.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	n.IsDeleted = true
	n.UpdatedAt = time.Now()
	return nil
}

func (r *memNoteRepo) List(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Note
	for _, n := range r.notes {
		if n.UID == uid && !n.IsDeleted {
			out = append(out, r.clone(n))
		}
	}
	return out, nil
}

func (r *memNoteRepo) ListCount(ctx context.Context, uid int64) (int64, error) {
	notes, _ := r.List(ctx, uid, 0, 0)
	return int64(len(notes)), nil
}

func (r *memNoteRepo) PurgeDeletedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, n := range r.notes {
		if n.IsDeleted && n.UpdatedAt.Before(before) {
			delete(r.notes, id)
			purged++
		}
	}
	return purged, nil
}

// memShareRepo 内存实现，供服务层测试使用
type memShareRepo struct {
	mu     sync.Mutex
	shares map[string]*domain.ShareLink
	nextID int64
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{shares: make(map[string]*domain.ShareLink)}
}

func (r *memShareRepo) clone(s *domain.ShareLink) *domain.ShareLink {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (r *memShareRepo) Create(ctx context.Context, share *domain.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	share.ID = r.nextID
	share.CreatedAt = time.Now()
	r.shares[share.Token] = r.clone(share)
	return nil
}

func (r *memShareRepo) GetByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.clone(s), nil
}

func (r *memShareRepo) GetByNoteID(ctx context.Context, noteID string, uid int64) (*domain.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.ShareLink
	for _, s := range r.shares {
		if s.NoteID == noteID && s.UID == uid {
			if latest == nil || s.ID > latest.ID {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.clone(latest), nil
}

func (r *memShareRepo) SetActive(ctx context.Context, token string, uid int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[token]
	if !ok || s.UID != uid {
		return gorm.ErrRecordNotFound
	}
	s.IsActive = active
	return nil
}

func (r *memShareRepo) UpdateViewStats(ctx context.Context, token string, viewCountIncr int64, lastViewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[token]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.ViewCount += viewCountIncr
	s.LastViewedAt = lastViewedAt
	return nil
}

func (r *memShareRepo) ListByUID(ctx context.Context, uid int64) ([]*domain.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ShareLink
	for _, s := range r.shares {
		if s.UID == uid {
			out = append(out, r.clone(s))
		}
	}
	return out, nil
}

// memUserRepo 内存实现，供服务层测试使用
type memUserRepo struct {
	mu      sync.Mutex
	users   map[int64]*domain.User
	nextUID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) clone(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *memUserRepo) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok || u.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return r.clone(u), nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && !u.IsDeleted {
			return r.clone(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextUID++
	u := r.clone(user)
	u.UID = r.nextUID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.UID] = u
	return r.clone(u), nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, uid int64, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok || u.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	u.Password = password
	return nil
}

// stubTokenManager 测试用的 Token 管理器
type stubTokenManager struct{}

func (stubTokenManager) Generate(uid int64, email, ip string) (string, error) {
	return "token-" + strconv.FormatInt(uid, 10), nil
}

func (stubTokenManager) Parse(token string) (*app.UserEntity, error) { return nil, nil }

func (stubTokenManager) Validate(token string) error { return nil }

func (stubTokenManager) GetSecretKey() string { return "test-secret" }
