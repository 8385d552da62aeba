// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/dto"
	"github.com/elsendo/elsendo-server/pkg/code"
	"github.com/elsendo/elsendo-server/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// shareTokenLength 分享 Token 长度
const shareTokenLength = 21

// statsFlushInterval 访问统计落库周期
const statsFlushInterval = 5 * time.Minute

// ShareService defines the share business service interface
// ShareService 定义分享业务服务接口
type ShareService interface {
	// Create creates a share link, or returns the existing active one
	// Create 创建分享链接，已有有效链接时直接返回
	Create(ctx context.Context, uid int64, noteID string) (*dto.ShareDTO, error)

	// Revoke deactivates a share link
	// Revoke 撤销分享链接
	Revoke(ctx context.Context, uid int64, token string) error

	// List lists all share links of a user
	// List 列出用户的所有分享链接
	List(ctx context.Context, uid int64) ([]*dto.ShareDTO, error)

	// GetSharedNote fetches the note behind an active share token, read-only
	// GetSharedNote 通过有效分享 Token 获取只读笔记内容
	GetSharedNote(ctx context.Context, token string) (*dto.SharedNoteDTO, error)

	// RecordView aggregates access statistics in memory
	// RecordView 在内存中聚合访问统计
	RecordView(token string)

	// Shutdown flushes remaining statistics
	// Shutdown 关闭服务并同步最后的统计
	Shutdown(ctx context.Context) error
}

// aggStats aggregated view statistics per token
// aggStats 按 Token 聚合的访问统计
type aggStats struct {
	viewCount    int64     // View count // 访问计数
	lastViewedAt time.Time // Last viewed at // 最后访问时间
}

// shareService implementation of ShareService interface
// shareService 实现 ShareService 接口
type shareService struct {
	shareRepo domain.ShareLinkRepository
	noteRepo  domain.NoteRepository
	logger    *zap.Logger
	config    *ServiceConfig

	// Statistics buffer
	// 统计缓冲区
	bufferMu    sync.Mutex
	statsBuffer map[string]*aggStats
	ticker      *time.Ticker
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
}

// NewShareService creates ShareService instance
// NewShareService 创建 ShareService 实例
func NewShareService(shareRepo domain.ShareLinkRepository, noteRepo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig) ShareService {
	s := &shareService{
		shareRepo:   shareRepo,
		noteRepo:    noteRepo,
		logger:      logger,
		config:      config,
		statsBuffer: make(map[string]*aggStats),
		ticker:      time.NewTicker(statsFlushInterval),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	go s.startFlushLoop()

	return s
}

func (s *shareService) domainToDTO(share *domain.ShareLink) *dto.ShareDTO {
	if share == nil {
		return nil
	}
	return &dto.ShareDTO{
		Token:        share.Token,
		NoteID:       share.NoteID,
		URL:          s.shareURL(share.Token),
		IsActive:     share.IsActive,
		ViewCount:    share.ViewCount,
		LastViewedAt: share.LastViewedAt,
		CreatedAt:    share.CreatedAt,
	}
}

// shareURL 拼接对外分享地址，未配置 PublicURL 时只返回路径
func (s *shareService) shareURL(token string) string {
	base := ""
	if s.config != nil {
		base = s.config.Preview.PublicURL
	}
	return base + "/shared/" + token
}

// Create 创建分享链接，已有有效链接时直接返回
// 被撤销的链接不复用 Token，重新分享会生成新链接
func (s *shareService) Create(ctx context.Context, uid int64, noteID string) (*dto.ShareDTO, error) {
	// 只允许分享自己的、未删除的笔记
	if _, err := s.noteRepo.GetByID(ctx, noteID, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	existing, err := s.shareRepo.GetByNoteID(ctx, noteID, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if existing != nil && existing.IsActive {
		return s.domainToDTO(existing), nil
	}

	token, err := util.GenerateShareToken(shareTokenLength)
	if err != nil {
		return nil, code.ErrorShareCreateFailed.WithDetails(err.Error())
	}

	share := &domain.ShareLink{
		Token:    token,
		NoteID:   noteID,
		UID:      uid,
		IsActive: true,
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, code.ErrorShareCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("share link created",
		zap.Int64("uid", uid),
		zap.String("note_id", noteID),
		zap.String("token", token))

	return s.domainToDTO(share), nil
}

// Revoke 撤销分享链接
func (s *shareService) Revoke(ctx context.Context, uid int64, token string) error {
	if err := s.shareRepo.SetActive(ctx, token, uid, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorShareNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("share link revoked",
		zap.Int64("uid", uid),
		zap.String("token", token))
	return nil
}

// List 列出用户的所有分享链接
func (s *shareService) List(ctx context.Context, uid int64) ([]*dto.ShareDTO, error) {
	shares, err := s.shareRepo.ListByUID(ctx, uid)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	result := make([]*dto.ShareDTO, 0, len(shares))
	for _, share := range shares {
		result = append(result, s.domainToDTO(share))
	}
	return result, nil
}

// GetSharedNote 通过有效分享 Token 获取只读笔记内容
// 已撤销的链接与已删除的笔记均不可见
func (s *shareService) GetSharedNote(ctx context.Context, token string) (*dto.SharedNoteDTO, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorShareNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !share.IsViewable() {
		return nil, code.ErrorShareRevoked
	}

	note, err := s.noteRepo.GetByIDPublic(ctx, share.NoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorShareNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if note.IsDeleted {
		return nil, code.ErrorShareNotFound
	}

	return &dto.SharedNoteDTO{
		Title:     note.Title,
		Content:   note.Content,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

// RecordView 在内存中聚合访问统计，由定时器批量落库
func (s *shareService) RecordView(token string) {
	s.bufferMu.Lock()
	defer s.bufferMu.Unlock()

	stats, ok := s.statsBuffer[token]
	if !ok {
		stats = &aggStats{}
		s.statsBuffer[token] = stats
	}
	stats.viewCount++
	stats.lastViewedAt = time.Now()
}

// startFlushLoop 周期性地把统计缓冲区同步到数据库
func (s *shareService) startFlushLoop() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.ticker.C:
			s.flushStats(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// flushStats 落库一次统计缓冲区
func (s *shareService) flushStats(ctx context.Context) {
	s.bufferMu.Lock()
	buffer := s.statsBuffer
	s.statsBuffer = make(map[string]*aggStats)
	s.bufferMu.Unlock()

	for token, stats := range buffer {
		if err := s.shareRepo.UpdateViewStats(ctx, token, stats.viewCount, stats.lastViewedAt); err != nil {
			s.logger.Warn("flush share view stats failed",
				zap.String("token", token),
				zap.Error(err))
		}
	}
}

// Shutdown 关闭服务并同步最后的统计
func (s *shareService) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stopCh)
	})
	<-s.doneCh
	s.flushStats(ctx)
	return nil
}
