package service

import (
	"context"
	"testing"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newShareFixture(t *testing.T) (ShareService, *memNoteRepo, *memShareRepo) {
	t.Helper()
	noteRepo := newMemNoteRepo()
	shareRepo := newMemShareRepo()
	svc := NewShareService(shareRepo, noteRepo, zap.NewNop(), &ServiceConfig{
		Preview: PreviewServiceConfig{PublicURL: "https://notes.example.com"},
	})
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	return svc, noteRepo, shareRepo
}

func TestShareCreateReturnsExisting(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)

	first, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)
	assert.Len(t, first.Token, 21)
	assert.True(t, first.IsActive)
	assert.Equal(t, "https://notes.example.com/shared/"+first.Token, first.URL)

	// 重复分享同一笔记返回同一 Token
	second, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

func TestGetSharedNoteReturnsContent(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "Trip notes", Content: "<p>pack light</p>"})
	require.NoError(t, err)

	share, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)

	shared, err := svc.GetSharedNote(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, "Trip notes", shared.Title)
	assert.Equal(t, "<p>pack light</p>", shared.Content)
}

func TestGetSharedNoteRejectsRevokedAndUnknown(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)

	share, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, 1, share.Token))

	_, err = svc.GetSharedNote(ctx, share.Token)
	assert.ErrorIs(t, err, code.ErrorShareRevoked)

	_, err = svc.GetSharedNote(ctx, "no-such-token")
	assert.ErrorIs(t, err, code.ErrorShareNotFound)
}

func TestGetSharedNoteHidesDeletedNote(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)

	share, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)
	require.NoError(t, noteRepo.SoftDelete(ctx, note.ID, 1))

	_, err = svc.GetSharedNote(ctx, share.Token)
	assert.ErrorIs(t, err, code.ErrorShareNotFound)
}

func TestShareCreateAfterRevokeIssuesNewToken(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)

	first, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, 1, first.Token))

	// 撤销过的 Token 不复用
	second, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, second.IsActive)
}

func TestShareCreateRequiresOwnership(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 2, note.ID)
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)
}

func TestShareCreateDeletedNote(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)
	require.NoError(t, noteRepo.SoftDelete(ctx, note.ID, 1))

	_, err = svc.Create(ctx, 1, note.ID)
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)
}

func TestShareRevokeUnknownToken(t *testing.T) {
	svc, _, _ := newShareFixture(t)

	err := svc.Revoke(context.Background(), 1, "tok_unknown")
	assert.ErrorIs(t, err, code.ErrorShareNotFound)
}

func TestShareRevokeOtherUsersToken(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)
	share, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)

	err = svc.Revoke(ctx, 2, share.Token)
	assert.ErrorIs(t, err, code.ErrorShareNotFound)
}

func TestShareViewStatsFlushedOnShutdown(t *testing.T) {
	noteRepo := newMemNoteRepo()
	shareRepo := newMemShareRepo()
	svc := NewShareService(shareRepo, noteRepo, zap.NewNop(), &ServiceConfig{})
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "N", Content: "<p>x</p>"})
	require.NoError(t, err)
	share, err := svc.Create(ctx, 1, note.ID)
	require.NoError(t, err)

	svc.RecordView(share.Token)
	svc.RecordView(share.Token)
	svc.RecordView(share.Token)

	require.NoError(t, svc.Shutdown(ctx))

	stored, err := shareRepo.GetByToken(ctx, share.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stored.ViewCount)
	assert.False(t, stored.LastViewedAt.IsZero())
}

func TestShareList(t *testing.T) {
	svc, noteRepo, _ := newShareFixture(t)
	ctx := context.Background()

	noteA, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "A", Content: "<p>x</p>"})
	require.NoError(t, err)
	noteB, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "B", Content: "<p>y</p>"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, noteA.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, noteB.ID)
	require.NoError(t, err)

	shares, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, shares, 2)

	other, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}
