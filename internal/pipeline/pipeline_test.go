package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/blurhash-cli/blurhash"
	"github.com/AnyUserName/blurhash-cli/internal/hasher"
	"github.com/AnyUserName/blurhash-cli/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeBMP(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, bmp.Encode(f, img))
}

// fixtureDir lays out:
//
//	banner.png       400x225
//	cards/card.bmp   60x40
//	.hidden/x.png    skipped
//	notes.txt        skipped
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "banner.png"), gradient(400, 225))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cards"), 0o755))
	writeBMP(t, filepath.Join(dir, "cards", "card.bmp"), gradient(60, 40))
	writePNG(t, filepath.Join(dir, ".hidden", "x.png"), gradient(4, 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	return dir
}

func TestScanImages(t *testing.T) {
	dir := fixtureDir(t)
	out := filepath.Join(dir, "out")
	writePNG(t, filepath.Join(out, "old.png"), gradient(4, 4))

	sources, err := ScanImages(dir, out)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "banner", sources[0].Key)
	assert.Equal(t, "png", sources[0].Format)
	assert.Equal(t, "cards/card", sources[1].Key)
	assert.Equal(t, "cards/card.bmp", sources[1].RelPath)
	assert.Equal(t, "bmp", sources[1].Format)
	assert.Positive(t, sources[1].Size)
}

func TestRun_Manifest(t *testing.T) {
	dir := fixtureDir(t)
	out := filepath.Join(dir, "out")
	var log bytes.Buffer

	p := New(Config{
		InputDir:  dir,
		OutputDir: out,
		Profile:   profile.Get("default"),
		Workers:   2,
		Verbose:   true,
		Previews:  true,
		Log:       &log,
	})
	m, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Assets, 2)
	assert.Equal(t, 0, m.Stats.Failed)
	assert.Equal(t, 2, m.BuildInfo.Workers)

	banner := m.Assets["banner"]
	assert.True(t, blurhash.IsValid(banner.BlurHash), "hash %q", banner.BlurHash)
	assert.Equal(t, [2]int{4, 3}, banner.Components)
	assert.Equal(t, 400, banner.Original.Width)
	assert.InDelta(t, 400.0/225.0, banner.AspectRatio, 1e-9)
	assert.False(t, banner.Original.HasAlpha)

	data, err := os.ReadFile(filepath.Join(dir, "banner.png"))
	require.NoError(t, err)
	assert.Equal(t, hasher.ContentHash(data, 16), banner.SourceHash)

	avg, err := blurhash.AverageColor(banner.BlurHash)
	require.NoError(t, err)
	require.NotNil(t, banner.AvgColor)
	assert.Equal(t, [3]uint8{avg.R, avg.G, avg.B}, *banner.AvgColor)

	require.Len(t, banner.Previews, 1)
	pv := banner.Previews[0]
	assert.Equal(t, "png", pv.Format)
	assert.Equal(t, 32, pv.Width)
	assert.Equal(t, 18, pv.Height)
	assert.True(t, strings.HasPrefix(pv.Path, "banner.32.18."+pv.Hash[:8]), pv.Path)

	written, err := os.ReadFile(filepath.Join(out, pv.Path))
	require.NoError(t, err)
	assert.Equal(t, pv.Hash, hasher.ContentHash(written, 16))
	assert.Equal(t, int64(len(written)), pv.Size)

	card := m.Assets["cards/card"]
	require.Len(t, card.Previews, 1)
	assert.True(t, strings.HasPrefix(card.Previews[0].Path, "cards/card."), card.Previews[0].Path)
	assert.FileExists(t, filepath.Join(out, filepath.FromSlash(card.Previews[0].Path)))

	assert.Contains(t, log.String(), "[blurhash] found 2 images")
}

func TestRun_PartialFailure(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644))
	var log bytes.Buffer

	m, err := New(Config{
		InputDir:  dir,
		OutputDir: filepath.Join(dir, "out"),
		Profile:   profile.Get("minimal"),
		Log:       &log,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, m.Assets, 2)
	assert.Equal(t, 1, m.Stats.Failed)
	assert.Empty(t, m.Assets["banner"].Previews, "previews are opt-in")
	assert.Contains(t, log.String(), "decode broken.png")
	assert.Contains(t, log.String(), "1 of 3 images had errors")
}

func TestUniqueKeys(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "photo.png"), gradient(8, 8))
	writeBMP(t, filepath.Join(dir, "photo.bmp"), gradient(8, 8))
	writePNG(t, filepath.Join(dir, "other.png"), gradient(8, 8))

	sources, err := ScanImages(dir, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, sources, 3)

	unique, conflicts := uniqueKeys(sources)
	require.Len(t, unique, 2)
	assert.Equal(t, "other.png", unique[0].RelPath)
	assert.Equal(t, "photo.bmp", unique[1].RelPath)
	require.Len(t, conflicts, 1)
	assert.EqualError(t, conflicts[0], `photo.png: asset key "photo" already taken by photo.bmp`)
}

func TestRun_DuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	writePNG(t, filepath.Join(dir, "photo.png"), gradient(40, 30))
	writeBMP(t, filepath.Join(dir, "photo.bmp"), gradient(30, 40))
	var log bytes.Buffer

	m, err := New(Config{
		InputDir:  dir,
		OutputDir: out,
		Profile:   profile.Get("default"),
		Previews:  true,
		Log:       &log,
	}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Assets, 1)
	assert.Equal(t, "bmp", m.Assets["photo"].Original.Format)
	assert.Equal(t, 1, m.Stats.Failed)
	assert.Contains(t, log.String(), `photo.png: asset key "photo" already taken by photo.bmp`)
	assert.Contains(t, log.String(), "1 of 2 images had errors")

	// Only the kept source writes previews.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, len(m.Assets["photo"].Previews))
}

func TestRun_AllFail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("junk"), 0o644))

	_, err := New(Config{InputDir: dir, OutputDir: filepath.Join(dir, "out"), Profile: profile.Get("default"), Log: &bytes.Buffer{}}).
		Run(context.Background())
	assert.ErrorContains(t, err, "all 1 images failed")
}

func TestRun_Empty(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Config{InputDir: dir, OutputDir: filepath.Join(dir, "out"), Profile: profile.Get("default")}).
		Run(context.Background())
	assert.ErrorContains(t, err, "no images found")
}

func TestRun_Cancelled(t *testing.T) {
	dir := fixtureDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{InputDir: dir, OutputDir: filepath.Join(dir, "out"), Profile: profile.Get("default")}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownscale(t *testing.T) {
	img := gradient(400, 100)

	small := Downscale(img, 64)
	assert.Equal(t, 64, small.Bounds().Dx())
	assert.Equal(t, 16, small.Bounds().Dy())

	assert.Same(t, img, Downscale(img, 0))
	assert.Same(t, img, Downscale(img, 400))
}

func TestDownscale_HashStaysClose(t *testing.T) {
	img := gradient(512, 512)
	full, err := blurhash.EncodeImage(img, 4, 3)
	require.NoError(t, err)
	small, err := blurhash.EncodeImage(Downscale(img, 64), 4, 3)
	require.NoError(t, err)

	a, _ := blurhash.AverageColor(full)
	b, _ := blurhash.AverageColor(small)
	assert.InDelta(t, int(a.R), int(b.R), 3)
	assert.InDelta(t, int(a.G), int(b.G), 3)
	assert.InDelta(t, int(a.B), int(b.B), 3)
}

func TestHasAlpha(t *testing.T) {
	opaque := gradient(4, 4)
	assert.False(t, hasAlpha(opaque))

	translucent := gradient(4, 4)
	translucent.SetNRGBA(1, 1, color.NRGBA{R: 1, A: 10})
	assert.True(t, hasAlpha(translucent))

	assert.False(t, hasAlpha(image.NewGray(image.Rect(0, 0, 2, 2))))
	assert.False(t, hasAlpha(image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420)))
}
