package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/blurhash-cli/blurhash"
	"github.com/AnyUserName/blurhash-cli/internal/hasher"
	"github.com/AnyUserName/blurhash-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <hash | manifest_path>...",
	Short: "Check blur hashes or a blurhash manifest",
	Long: `Each argument naming an existing file or directory is loaded as a manifest:
every asset's hash is checked and every preview file must exist with the
recorded size and content hash.  Any other argument is checked as a hash.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			if !validateManifestPath(out, arg) {
				failed++
			}
			continue
		}
		if !validateHash(out, arg) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("validation failed for %d of %d arguments", failed, len(args))
	}
	return nil
}

func validateHash(w io.Writer, hash string) bool {
	x, y, err := blurhash.Components(hash)
	if err == nil {
		// A structurally valid hash can still carry foreign characters.
		_, err = blurhash.Decode(hash, 1, 1, 1, 3)
	}
	if err != nil {
		fmt.Fprintf(w, "  ✗ %s: %v\n", hash, err)
		return false
	}
	c, _ := blurhash.AverageColor(hash)
	fmt.Fprintf(w, "  ✓ %s  (%dx%d components, avg #%02x%02x%02x)\n", hash, x, y, c.R, c.G, c.B)
	return true
}

func validateManifestPath(w io.Writer, path string) bool {
	m, baseDir, err := manifest.Load(path)
	if err != nil {
		fmt.Fprintf(w, "  ✗ %s: %v\n", path, err)
		return false
	}

	errs := validateManifest(m, baseDir)
	if len(errs) == 0 {
		fmt.Fprintln(w, "  ✓ Manifest is valid")
		fmt.Fprintf(w, "  ✓ %d assets, %d previews, all files present\n", m.Stats.TotalAssets, m.Stats.TotalPreviews)
		return true
	}

	fmt.Fprintf(w, "  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "    • %s\n", e)
	}
	return false
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	keys := make([]string, 0, len(m.Assets))
	for key := range m.Assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	previewCount, hashBytes := 0, 0
	for _, key := range keys {
		asset := m.Assets[key]
		previewCount += len(asset.Previews)
		hashBytes += len(asset.BlurHash)

		if asset.Original.Width <= 0 || asset.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, asset.Original.Width, asset.Original.Height))
		}
		if asset.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid aspect ratio %.4f", key, asset.AspectRatio))
		}

		switch x, y, err := blurhash.Components(asset.BlurHash); {
		case asset.BlurHash == "":
			errs = append(errs, fmt.Sprintf("asset %q: missing blurhash", key))
		case err != nil:
			errs = append(errs, fmt.Sprintf("asset %q: %v", key, err))
		case !decodes(asset.BlurHash):
			errs = append(errs, fmt.Sprintf("asset %q: blurhash %q does not decode", key, asset.BlurHash))
		case [2]int{x, y} != asset.Components:
			errs = append(errs, fmt.Sprintf("asset %q: components %v, hash encodes [%d %d]",
				key, asset.Components, x, y))
		}

		seenPaths := map[string]bool{}
		for i, p := range asset.Previews {
			if p.Format == "" {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: empty format", key, i))
			}
			if p.Width <= 0 || p.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: invalid dimensions %dx%d",
					key, i, p.Width, p.Height))
			}
			if p.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: missing path", key, i))
				continue
			}
			if seenPaths[p.Path] {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: duplicate path %q", key, i, p.Path))
			}
			seenPaths[p.Path] = true

			errs = append(errs, checkPreviewFile(key, i, p, filepath.Join(baseDir, p.Path))...)
		}
	}

	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalPreviews != previewCount {
		errs = append(errs, fmt.Sprintf("stats.total_previews mismatch: %d != %d", m.Stats.TotalPreviews, previewCount))
	}
	if m.Stats.TotalHashBytes != hashBytes {
		errs = append(errs, fmt.Sprintf("stats.total_hash_bytes mismatch: %d != %d", m.Stats.TotalHashBytes, hashBytes))
	}

	return errs
}

func checkPreviewFile(key string, i int, p manifest.Preview, fullPath string) []string {
	info, err := os.Stat(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return []string{fmt.Sprintf("asset %q preview[%d]: file not found: %s", key, i, p.Path)}
	}
	if err != nil {
		return []string{fmt.Sprintf("asset %q preview[%d]: %v", key, i, err)}
	}

	var errs []string
	if p.Size > 0 && info.Size() != p.Size {
		errs = append(errs, fmt.Sprintf("asset %q preview[%d]: size mismatch: manifest=%d, disk=%d",
			key, i, p.Size, info.Size()))
	}
	if p.Hash != "" {
		sum, err := hasher.FileHash(fullPath, len(p.Hash))
		if err != nil {
			errs = append(errs, fmt.Sprintf("asset %q preview[%d]: %v", key, i, err))
		} else if sum != p.Hash {
			errs = append(errs, fmt.Sprintf("asset %q preview[%d]: content hash mismatch: manifest=%s, disk=%s",
				key, i, p.Hash, sum))
		}
	}
	return errs
}

func decodes(hash string) bool {
	_, err := blurhash.Decode(hash, 1, 1, 1, 3)
	return err == nil
}
