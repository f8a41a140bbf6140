package ring

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/packybar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(filepath.Join(t.TempDir(), "ring.png"))
}

func TestRenderWritesDecodablePNG(t *testing.T) {
	renderer := newTestRenderer(t)

	wrote, err := renderer.Render(Options{Percent: 42, Colored: true, ColorMode: domain.RingColorThreshold, Label: "42"})
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(renderer.Path())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageSize, img.Bounds().Dx())
	assert.Equal(t, imageSize, img.Bounds().Dy())
}

func TestRenderSkipsUnchangedSignature(t *testing.T) {
	renderer := newTestRenderer(t)
	opts := Options{Percent: 25, Colored: true, ColorMode: domain.RingColorThreshold, Label: "25"}

	wrote, err := renderer.Render(opts)
	require.NoError(t, err)
	require.True(t, wrote)

	first, err := os.Stat(renderer.Path())
	require.NoError(t, err)

	wrote, err = renderer.Render(opts)
	require.NoError(t, err)
	assert.False(t, wrote)

	second, err := os.Stat(renderer.Path())
	require.NoError(t, err)
	assert.True(t, first.ModTime().Equal(second.ModTime()))
}

func TestRenderRedrawsWhenInputsChange(t *testing.T) {
	renderer := newTestRenderer(t)

	cases := []Options{
		{Percent: 25, Colored: true, ColorMode: domain.RingColorThreshold},
		{Percent: 26, Colored: true, ColorMode: domain.RingColorThreshold},
		{Percent: 26, Colored: false, ColorMode: domain.RingColorThreshold},
		{Percent: 26, Colored: false, ColorMode: domain.RingColorThreshold, Reverse: true},
		{Percent: 26, Colored: false, ColorMode: domain.RingColorThreshold, Reverse: true, Label: "26"},
	}

	for _, opts := range cases {
		wrote, err := renderer.Render(opts)
		require.NoError(t, err)
		assert.True(t, wrote, "options %+v should force a redraw", opts)
	}
}

func TestRenderHonorsSeededSignature(t *testing.T) {
	renderer := newTestRenderer(t)
	opts := Options{Percent: 80, Colored: true, ColorMode: domain.RingColorGradient, Label: "80"}

	renderer.SetLastSignature(opts.Signature())

	wrote, err := renderer.Render(opts)
	require.NoError(t, err)
	assert.False(t, wrote)

	_, err = os.Stat(renderer.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRenderCoversAllColorModes(t *testing.T) {
	for _, mode := range []string{domain.RingColorThreshold, domain.RingColorGradient, domain.RingColorFlat} {
		renderer := newTestRenderer(t)

		wrote, err := renderer.Render(Options{Percent: 90, Colored: true, ColorMode: mode})
		require.NoError(t, err, "mode %s", mode)
		assert.True(t, wrote)
	}
}
