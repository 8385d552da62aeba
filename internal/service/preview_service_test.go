package service

import (
	"context"
	"strings"
	"testing"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/pkg/code"
	"github.com/elsendo/elsendo-server/pkg/ogimage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func previewTestConfig() *ServiceConfig {
	return &ServiceConfig{
		Preview: PreviewServiceConfig{
			SiteName:      "Elsendo",
			Tagline:       "A note shared via Elsendo",
			FallbackTitle: "Shared Note",
			CrawlerSignatures: []string{
				"facebookexternalhit",
				"Facebot",
				"Twitterbot",
				"WhatsApp",
				"LinkedInBot",
				"Pinterest",
				"Slackbot",
				"TelegramBot",
				"Discordbot",
			},
		},
	}
}

func newPreviewFixture(t *testing.T) (PreviewService, *memNoteRepo, *memShareRepo) {
	t.Helper()
	noteRepo := newMemNoteRepo()
	shareRepo := newMemShareRepo()
	renderer, err := ogimage.NewRenderer("Elsendo", "A note shared via Elsendo")
	require.NoError(t, err)
	svc := NewPreviewService(shareRepo, noteRepo, renderer, zap.NewNop(), previewTestConfig())
	return svc, noteRepo, shareRepo
}

func TestIsCrawler(t *testing.T) {
	svc, _, _ := newPreviewFixture(t)

	tests := []struct {
		name string
		ua   string
		want bool
	}{
		{"facebook", "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)", true},
		{"facebot", "Facebot/1.0", true},
		{"twitter", "Twitterbot/1.0", true},
		{"whatsapp", "WhatsApp/2.23.20", true},
		{"linkedin", "LinkedInBot/1.0 (compatible; Mozilla/5.0)", true},
		{"pinterest", "Pinterest/0.2 (+http://www.pinterest.com/bot.html)", true},
		{"slack", "Slackbot-LinkExpanding 1.0", true},
		{"telegram", "TelegramBot (like TwitterBot)", true},
		{"discord", "Mozilla/5.0 (compatible; Discordbot/2.0)", true},
		{"case insensitive", "TWITTERBOT/1.0", true},
		{"substring anywhere", "Mozilla/5.0 (compatible) facebookexternalhit/1.1", true},
		{"browser chrome", "Mozilla/5.0 (Macintosh) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", false},
		{"browser firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/118.0", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.IsCrawler(tt.ua))
		})
	}
}

func TestResolveShare(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{
		UID:     1,
		Title:   "  Weekly Plan  ",
		Content: "<h1>Plan</h1><p>Ship the &amp; release</p>",
	})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_plan",
		NoteID:   note.ID,
		UID:      1,
		IsActive: true,
	}))

	meta, err := svc.Resolve(ctx, "tok_plan")
	require.NoError(t, err)
	assert.Equal(t, "Weekly Plan", meta.Title, "title is trimmed")
	assert.Equal(t, "Plan Ship the & release", meta.Description, "tags stripped, whitespace collapsed")
}

func TestResolveShareFallbacks(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "", Content: "<p></p>"})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_empty",
		NoteID:   note.ID,
		UID:      1,
		IsActive: true,
	}))

	meta, err := svc.Resolve(ctx, "tok_empty")
	require.NoError(t, err)
	assert.Equal(t, "Shared Note", meta.Title)
	assert.Equal(t, "A note shared via Elsendo", meta.Description)
}

func TestResolveShareUnknownToken(t *testing.T) {
	svc, _, _ := newPreviewFixture(t)

	_, err := svc.Resolve(context.Background(), "tok_missing")
	assert.ErrorIs(t, err, code.ErrorShareNotFound)
}

func TestResolveShareRevoked(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "Secret", Content: "body"})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_revoked",
		NoteID:   note.ID,
		UID:      1,
		IsActive: false,
	}))

	_, err = svc.Resolve(ctx, "tok_revoked")
	assert.ErrorIs(t, err, code.ErrorShareRevoked)
}

func TestResolveShareDeletedNote(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "Gone", Content: "body"})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_deleted",
		NoteID:   note.ID,
		UID:      1,
		IsActive: true,
	}))
	require.NoError(t, noteRepo.SoftDelete(ctx, note.ID, 1))

	_, err = svc.Resolve(ctx, "tok_deleted")
	assert.ErrorIs(t, err, code.ErrorShareNotFound)
}

func TestResolveShareLongDescription(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{
		UID:     1,
		Title:   "Long",
		Content: "<p>" + strings.Repeat("a", 500) + "</p>",
	})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_long",
		NoteID:   note.ID,
		UID:      1,
		IsActive: true,
	}))

	meta, err := svc.Resolve(ctx, "tok_long")
	require.NoError(t, err)
	assert.Len(t, []rune(meta.Description), metaDescriptionLength)
}

func TestRenderHTML(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{
		UID:     1,
		Title:   `Quotes "and" <tags>`,
		Content: "<p>hello</p>",
	})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_html",
		NoteID:   note.ID,
		UID:      1,
		IsActive: true,
	}))

	meta, err := svc.Resolve(ctx, "tok_html")
	require.NoError(t, err)

	html, err := svc.RenderHTML(meta, "https://notes.example.com")
	require.NoError(t, err)
	doc := string(html)

	// 页面标题带站点后缀，og:title 不带
	assert.Contains(t, doc, "<title>Quotes &#34;and&#34; &lt;tags&gt; - Elsendo</title>")
	assert.Contains(t, doc, `property="og:title" content="Quotes &#34;and&#34; &lt;tags&gt;"`)
	assert.Contains(t, doc, `name="description" content="hello"`)
	assert.Contains(t, doc, `name="twitter:url" content="https://notes.example.com/shared/tok_html"`)
	assert.Contains(t, doc, `property="og:type" content="article"`)
	assert.Contains(t, doc, `property="og:url" content="https://notes.example.com/shared/tok_html"`)
	assert.Contains(t, doc, `property="og:image" content="https://notes.example.com/api/og-image/tok_html"`)
	assert.Contains(t, doc, `property="og:site_name" content="Elsendo"`)
	assert.Contains(t, doc, `name="twitter:card" content="summary_large_image"`)
	assert.Contains(t, doc, `http-equiv="refresh"`)
	assert.NotContains(t, doc, "<tags>", "title is escaped")
}

func TestRenderImage(t *testing.T) {
	svc, noteRepo, shareRepo := newPreviewFixture(t)
	ctx := context.Background()

	note, err := noteRepo.Create(ctx, &domain.Note{UID: 1, Title: "Card", Content: "<p>body text</p>"})
	require.NoError(t, err)
	require.NoError(t, shareRepo.Create(ctx, &domain.ShareLink{
		Token:    "tok_img",
		NoteID:   note.ID,
		UID:      1,
		IsActive: true,
	}))

	png, err := svc.RenderImage(ctx, "tok_img")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	// Unknown token falls back to the branded card instead of failing
	// 未知 Token 回退到品牌卡片而不是报错
	fallback, err := svc.RenderImage(ctx, "tok_unknown")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, fallback[:4])
}
