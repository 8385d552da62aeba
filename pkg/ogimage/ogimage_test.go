package ogimage

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesFixedSizePNG(t *testing.T) {
	r, err := NewRenderer("Elsendo", "A note shared via Elsendo")
	require.NoError(t, err)

	data, err := r.Render("Weekly Plan", "Ship the release and write the changelog.")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
}

func TestRenderHandlesLongAndEmptyText(t *testing.T) {
	r, err := NewRenderer("Elsendo", "A note shared via Elsendo")
	require.NoError(t, err)

	// 超长标题和摘要不应报错，按行宽截断绘制
	long := strings.Repeat("verylongword ", 80)
	data, err := r.Render(long, long)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	data, err = r.Render("", "")
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestRenderDefaultProducesFixedSizePNG(t *testing.T) {
	r, err := NewRenderer("Elsendo", "A note shared via Elsendo")
	require.NoError(t, err)

	data, err := r.RenderDefault()
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
}
