// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/dto"
	"github.com/elsendo/elsendo-server/pkg/autosave"
	"github.com/elsendo/elsendo-server/pkg/code"
	"github.com/elsendo/elsendo-server/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// listPreviewLength 列表摘要的最大字符数
const listPreviewLength = 150

// NoteService defines the note business service interface
// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 创建笔记
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Get 获取单条笔记
	Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error)

	// List 分页获取笔记列表
	List(ctx context.Context, uid int64, page, pageSize int) ([]*dto.NoteListItemDTO, int64, error)

	// Delete 软删除笔记
	Delete(ctx context.Context, uid int64, id string) error

	// SubmitContent queues an edit through the debounced autosave pipeline
	// SubmitContent 将编辑提交到防抖自动保存管道
	SubmitContent(ctx context.Context, uid int64, params *dto.NoteContentRequest) (*dto.NoteSaveStateDTO, error)

	// SaveState reports the autosave state of a note
	// SaveState 报告笔记的自动保存状态
	SaveState(uid int64, id string) *dto.NoteSaveStateDTO

	// PurgeDeleted 物理清理超过保留期的已删除笔记
	PurgeDeleted(ctx context.Context) (int64, error)

	// Shutdown flushes queued edits and stops the autosave manager
	// Shutdown 刷写排队的编辑并停止自动保存管理器
	Shutdown(ctx context.Context) error
}

// noteSnapshot autosave 会话中携带的笔记快照
type noteSnapshot struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	autosave *autosave.Manager
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, manager *autosave.Manager, logger *zap.Logger, config *ServiceConfig) NoteService {
	return &noteService{
		noteRepo: noteRepo,
		autosave: manager,
		logger:   logger,
		config:   config,
	}
}

// sessionKey 自动保存会话键，按用户和笔记隔离
func sessionKey(uid int64, id string) string {
	return strconv.FormatInt(uid, 10) + ":" + id
}

// normalizeContent keeps an editable empty paragraph instead of a bare empty string
// normalizeContent 用可编辑的空段落代替裸空字符串
func normalizeContent(content string) string {
	if content == "" {
		return domain.EmptyContent
	}
	return content
}

func (s *noteService) domainToDTO(note *domain.Note) *dto.NoteDTO {
	if note == nil {
		return nil
	}
	return &dto.NoteDTO{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		UpdatedAt: note.UpdatedAt,
		CreatedAt: note.CreatedAt,
	}
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.Create(ctx, &domain.Note{
		UID:     uid,
		Title:   params.Title,
		Content: normalizeContent(params.Content),
	})
	if err != nil {
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("note created",
		zap.Int64("uid", uid),
		zap.String("note_id", note.ID))

	return s.domainToDTO(note), nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(note), nil
}

// List 分页获取笔记列表，正文替换为纯文本摘要
func (s *noteService) List(ctx context.Context, uid int64, page, pageSize int) ([]*dto.NoteListItemDTO, int64, error) {
	notes, err := s.noteRepo.List(ctx, uid, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.noteRepo.ListCount(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	items := make([]*dto.NoteListItemDTO, 0, len(notes))
	for _, note := range notes {
		items = append(items, &dto.NoteListItemDTO{
			ID:        note.ID,
			Title:     note.Title,
			Preview:   util.TruncateRunes(util.StripHTML(note.Content), listPreviewLength),
			UpdatedAt: note.UpdatedAt,
			CreatedAt: note.CreatedAt,
		})
	}
	return items, count, nil
}

// Delete 软删除笔记，保留期之后由清理任务物理删除
func (s *noteService) Delete(ctx context.Context, uid int64, id string) error {
	if err := s.noteRepo.SoftDelete(ctx, id, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNoteNotFound
		}
		return code.ErrorNoteDeleteFailed.WithDetails(err.Error())
	}

	s.logger.Info("note deleted",
		zap.Int64("uid", uid),
		zap.String("note_id", id))
	return nil
}

// SubmitContent 将编辑提交到防抖自动保存管道
// 同一保存窗口内的连续编辑会合并为一次落库，后写覆盖先写
func (s *noteService) SubmitContent(ctx context.Context, uid int64, params *dto.NoteContentRequest) (*dto.NoteSaveStateDTO, error) {
	// 提交前校验归属，避免为他人的笔记建立会话
	if _, err := s.noteRepo.GetByID(ctx, params.ID, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	snapshot, err := json.Marshal(noteSnapshot{
		Title:   params.Title,
		Content: normalizeContent(params.Content),
	})
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	key := sessionKey(uid, params.ID)
	noteID := params.ID
	err = s.autosave.Submit(key, string(snapshot), func(saveCtx context.Context, content string) error {
		var snap noteSnapshot
		if err := json.Unmarshal([]byte(content), &snap); err != nil {
			return err
		}
		return s.noteRepo.UpdateContent(saveCtx, noteID, uid, snap.Title, snap.Content)
	})
	if err != nil {
		return nil, code.ErrorAutosaveRejected.WithDetails(err.Error())
	}

	return s.SaveState(uid, params.ID), nil
}

// SaveState 报告笔记的自动保存状态
func (s *noteService) SaveState(uid int64, id string) *dto.NoteSaveStateDTO {
	return &dto.NoteSaveStateDTO{
		ID:    id,
		State: string(s.autosave.State(sessionKey(uid, id))),
	}
}

// PurgeDeleted 物理清理超过保留期的已删除笔记
// 保留时间为 0 或留空时不清理
func (s *noteService) PurgeDeleted(ctx context.Context) (int64, error) {
	if s.config == nil || s.config.App.SoftDeleteRetentionTime == "" || s.config.App.SoftDeleteRetentionTime == "0" {
		return 0, nil
	}
	retention, err := util.ParseDuration(s.config.App.SoftDeleteRetentionTime)
	if err != nil || retention <= 0 {
		return 0, nil
	}

	purged, err := s.noteRepo.PurgeDeletedBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged deleted notes", zap.Int64("count", purged))
	}
	return purged, nil
}

// Shutdown 刷写排队的编辑并停止自动保存管理器
func (s *noteService) Shutdown(ctx context.Context) error {
	return s.autosave.Shutdown(ctx)
}
