package manifest

// Manifest is the top-level output of a blurhash build.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers int     `json:"workers"`
	MaxDim  int     `json:"max_dim"` // longest side fed to the encoder, 0 = source size
	Punch   float64 `json:"punch"`   // contrast used for previews
}

// Asset describes a single source image and its placeholder.
type Asset struct {
	Original    OriginalInfo `json:"original"`
	SourceHash  string       `json:"source_hash"`         // xxhash64 of the source file, 16 hex chars
	BlurHash    string       `json:"blurhash"`            // base-83 placeholder string
	Components  [2]int       `json:"components"`          // [x, y] cosine components
	AspectRatio float64      `json:"aspect_ratio"`        // width / height
	AvgColor    *[3]uint8    `json:"avg_color,omitempty"` // [R,G,B] 0–255, the DC term
	Previews    []Preview    `json:"previews,omitempty"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// Preview is a decoded placeholder written to disk.
type Preview struct {
	Format string `json:"format"` // "png", "jpeg", ...
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes   int64 `json:"total_input_bytes"`
	TotalPreviewBytes int64 `json:"total_preview_bytes"`
	TotalHashBytes    int   `json:"total_hash_bytes"` // sum of blurhash string lengths
	TotalAssets       int   `json:"total_assets"`
	TotalPreviews     int   `json:"total_previews"`
	Failed            int   `json:"failed,omitempty"` // sources that could not be processed
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest file name inside an output directory.
const FileName = "blurhash.manifest.json"
