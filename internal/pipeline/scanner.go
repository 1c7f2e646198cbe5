package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the asset key (relpath without extension).
	Key string
	// Format is the normalised source format (png, jpeg, webp, gif, bmp, tiff).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// formatByExt maps recognised extensions to format names.
var formatByExt = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// ScanImages walks inputDir and returns all image sources sorted by key,
// then by relative path.
// Hidden directories and outputDir (when nested inside inputDir) are skipped.
func ScanImages(inputDir, outputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && (strings.HasPrefix(d.Name(), ".") || path == outputDir) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		format, ok := formatByExt[ext]
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath))),
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Key != sources[j].Key {
			return sources[i].Key < sources[j].Key
		}
		return sources[i].RelPath < sources[j].RelPath
	})
	return sources, nil
}

// uniqueKeys splits sorted sources into those that own their asset key and
// an error for every later source whose key is already taken (photo.png and
// photo.bmp both map to "photo").  The first by relative path wins.
func uniqueKeys(sources []Source) ([]Source, []error) {
	unique := make([]Source, 0, len(sources))
	var conflicts []error
	for _, src := range sources {
		if n := len(unique); n > 0 && unique[n-1].Key == src.Key {
			conflicts = append(conflicts, fmt.Errorf("%s: asset key %q already taken by %s",
				src.RelPath, src.Key, unique[n-1].RelPath))
			continue
		}
		unique = append(unique, src)
	}
	return unique, conflicts
}
