package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/AnyUserName/blurhash-cli/blurhash"
	"github.com/AnyUserName/blurhash-cli/internal/hasher"
	"github.com/AnyUserName/blurhash-cli/internal/manifest"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// processImage handles a single source image: read, hash, downscale,
// blurhash, and optionally write decoded previews.
func (p *Pipeline) processImage(src Source) processResult {
	result := processResult{key: src.Key}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	if origW == 0 || origH == 0 {
		result.err = fmt.Errorf("decode %s: empty image", src.RelPath)
		return result
	}

	xc, yc := p.cfg.Profile.Components(origW, origH)
	hash, err := blurhash.EncodeImage(Downscale(img, p.cfg.Profile.MaxDim), xc, yc)
	if err != nil {
		result.err = fmt.Errorf("blurhash %s: %w", src.RelPath, err)
		return result
	}
	avg, err := blurhash.AverageColor(hash)
	if err != nil {
		result.err = fmt.Errorf("blurhash %s: %w", src.RelPath, err)
		return result
	}

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:    origW,
			Height:   origH,
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: hasAlpha(img),
		},
		SourceHash:  hasher.ContentHash(data, 16),
		BlurHash:    hash,
		Components:  [2]int{xc, yc},
		AspectRatio: float64(origW) / float64(origH),
		AvgColor:    &[3]uint8{avg.R, avg.G, avg.B},
	}

	if p.cfg.Previews {
		previews, err := p.writePreviews(src, hash, origW, origH)
		if err != nil {
			result.err = err
			return result
		}
		result.asset.Previews = previews
	}
	return result
}

// writePreviews decodes hash at the profile's preview size and writes one
// content-addressed file per preview format: <key>.<w>.<h>.<hash8>.<ext>.
func (p *Pipeline) writePreviews(src Source, hash string, origW, origH int) ([]manifest.Preview, error) {
	prof := p.cfg.Profile
	pw, ph := prof.PreviewSize(origW, origH)
	placeholder, err := blurhash.DecodeImage(hash, pw, ph, prof.Punch)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", src.Key, err)
	}

	keyDir := filepath.Dir(filepath.FromSlash(src.Key))
	if err := os.MkdirAll(filepath.Join(p.cfg.OutputDir, keyDir), 0o755); err != nil {
		return nil, fmt.Errorf("preview %s: %w", src.Key, err)
	}

	var previews []manifest.Preview
	for _, format := range p.registry.ResolveFormats(prof.PreviewFormats) {
		enc := p.registry.Get(format)
		data, err := enc.Encode(placeholder, prof.Quality)
		if err != nil {
			p.logf("warn: encode preview %s as %s: %v", src.Key, format, err)
			continue
		}

		contentHash := hasher.ContentHash(data, 16)
		fileName := fmt.Sprintf("%s.%d.%d.%s.%s",
			filepath.Base(src.Key), pw, ph, contentHash[:8], enc.Extensions()[0])
		relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

		if err := os.WriteFile(filepath.Join(p.cfg.OutputDir, filepath.FromSlash(relPath)), data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", relPath, err)
		}
		previews = append(previews, manifest.Preview{
			Format: format,
			Width:  pw,
			Height: ph,
			Size:   int64(len(data)),
			Hash:   contentHash,
			Path:   relPath,
		})
	}
	return previews, nil
}

// Downscale shrinks img so its longest side is at most maxDim, keeping the
// aspect ratio.  Encoding cost grows with pixel count while the hash only
// keeps a handful of frequencies, so a small input loses nothing visible.
// maxDim <= 0 or an already small image returns img unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Box)
}

// hasAlpha reports whether any pixel is less than fully opaque.
func hasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		return !src.Opaque()
	case *image.RGBA:
		return !src.Opaque()
	case *image.YCbCr, *image.Gray:
		return false
	default:
		if o, ok := img.(interface{ Opaque() bool }); ok {
			return !o.Opaque()
		}
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
					return true
				}
			}
		}
		return false
	}
}
