package service

import (
	"context"
	"testing"
	"time"

	"github.com/elsendo/elsendo-server/internal/dto"
	"github.com/elsendo/elsendo-server/pkg/autosave"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNoteFixture(t *testing.T, delay time.Duration) (NoteService, *memNoteRepo, *autosave.Manager) {
	t.Helper()
	repo := newMemNoteRepo()
	manager := autosave.New(&autosave.Config{Delay: delay, IdleTimeout: time.Hour}, zap.NewNop())
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })
	svc := NewNoteService(repo, manager, zap.NewNop(), &ServiceConfig{
		App: AppServiceConfig{SoftDeleteRetentionTime: "30d"},
	})
	return svc, repo, manager
}

func waitForState(t *testing.T, svc NoteService, uid int64, id, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.SaveState(uid, id).State == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state never became %q", want)
}

func TestNoteCreateDefaultsEmptyContent(t *testing.T) {
	svc, _, _ := newNoteFixture(t, time.Hour)

	note, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{Title: "Blank"})
	require.NoError(t, err)
	assert.Equal(t, "<p></p>", note.Content)
}

func TestNoteSubmitContentDebounced(t *testing.T) {
	svc, repo, _ := newNoteFixture(t, 30*time.Millisecond)
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "Draft", Content: "<p>v0</p>"})
	require.NoError(t, err)

	// 连续三次编辑只应落库最后一次
	for _, content := range []string{"<p>v1</p>", "<p>v2</p>", "<p>v3</p>"} {
		state, err := svc.SubmitContent(ctx, 1, &dto.NoteContentRequest{
			ID:      note.ID,
			Title:   "Draft",
			Content: content,
		})
		require.NoError(t, err)
		assert.Equal(t, string(autosave.StateUnsaved), state.State)
	}

	waitForState(t, svc, 1, note.ID, string(autosave.StateSaved))

	stored, err := repo.GetByID(ctx, note.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>v3</p>", stored.Content)
}

func TestNoteSubmitContentEmptyBecomesPlaceholder(t *testing.T) {
	svc, repo, _ := newNoteFixture(t, 20*time.Millisecond)
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "T", Content: "<p>x</p>"})
	require.NoError(t, err)

	_, err = svc.SubmitContent(ctx, 1, &dto.NoteContentRequest{ID: note.ID, Title: "T", Content: ""})
	require.NoError(t, err)
	waitForState(t, svc, 1, note.ID, string(autosave.StateSaved))

	stored, err := repo.GetByID(ctx, note.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p></p>", stored.Content)
}

func TestNoteSubmitContentOwnership(t *testing.T) {
	svc, _, _ := newNoteFixture(t, time.Hour)
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "Mine"})
	require.NoError(t, err)

	// 其他用户不能向别人的笔记提交内容
	_, err = svc.SubmitContent(ctx, 2, &dto.NoteContentRequest{ID: note.ID, Content: "<p>hijack</p>"})
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)
}

func TestNoteSaveStateUnknownNote(t *testing.T) {
	svc, _, _ := newNoteFixture(t, time.Hour)

	state := svc.SaveState(1, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, string(autosave.StateSaved), state.State)
}

func TestNoteDeleteHidesFromListAndGet(t *testing.T) {
	svc, _, _ := newNoteFixture(t, time.Hour)
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "Bye", Content: "<p>x</p>"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, note.ID))

	_, err = svc.Get(ctx, 1, note.ID)
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)

	items, count, err := svc.List(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, items)

	// 二次删除报不存在
	assert.ErrorIs(t, svc.Delete(ctx, 1, note.ID), code.ErrorNoteNotFound)
}

func TestNoteListPreviewStripped(t *testing.T) {
	svc, _, _ := newNoteFixture(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{
		Title:   "Rich",
		Content: "<h1>Heading</h1><p>Some <b>bold</b> text</p>",
	})
	require.NoError(t, err)

	items, count, err := svc.List(ctx, 1, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	assert.Equal(t, "Heading Some bold text", items[0].Preview)
}

func TestNoteShutdownFlushesPendingEdit(t *testing.T) {
	svc, repo, _ := newNoteFixture(t, time.Hour)
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "T", Content: "<p>old</p>"})
	require.NoError(t, err)

	_, err = svc.SubmitContent(ctx, 1, &dto.NoteContentRequest{ID: note.ID, Title: "T", Content: "<p>new</p>"})
	require.NoError(t, err)

	require.NoError(t, svc.Shutdown(ctx))

	stored, err := repo.GetByID(ctx, note.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>new</p>", stored.Content)
}

func TestNotePurgeDeleted(t *testing.T) {
	svc, repo, _ := newNoteFixture(t, time.Hour)
	ctx := context.Background()

	note, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "Old", Content: "<p>x</p>"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 1, note.ID))

	// 保留期内不清理
	purged, err := svc.PurgeDeleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	// 把删除时间拨回保留期之前
	repo.mu.Lock()
	repo.notes[note.ID].UpdatedAt = time.Now().Add(-31 * 24 * time.Hour)
	repo.mu.Unlock()

	purged, err = svc.PurgeDeleted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}
