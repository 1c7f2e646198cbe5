package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AnyUserName/blurhash-cli/internal/manifest"
	"github.com/AnyUserName/blurhash-cli/internal/pipeline"
	"github.com/AnyUserName/blurhash-cli/internal/profile"
	"github.com/spf13/cobra"
)

var (
	buildOutDir   string
	buildProfile  string
	buildWorkers  int
	buildPreviews bool
	buildMaxDim   int
	buildPunch    float64
)

var buildCmd = &cobra.Command{
	Use:   "build <input_dir>",
	Short: "Compute placeholders for a directory and write a manifest",
	Long: `Scans the input directory for images (png, jpg, jpeg, gif, webp, bmp, tiff),
computes a blur hash for each one, and writes ` + manifest.FileName + `.

With --previews the hashes are also decoded into small placeholder files.
Preview filenames are content-addressed: <key>.<w>.<h>.<hash>.ext`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "./blurhash_out", "output directory")
	buildCmd.Flags().StringVarP(&buildProfile, "profile", "p", "default",
		"processing profile ("+strings.Join(profile.Names(), ", ")+")")
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	buildCmd.Flags().BoolVar(&buildPreviews, "previews", false, "write decoded placeholder images")
	buildCmd.Flags().IntVar(&buildMaxDim, "max-dim", 0, "longest side fed to the encoder (0 = profile default)")
	buildCmd.Flags().Float64Var(&buildPunch, "punch", 0, "preview contrast (0 = profile default)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof := profile.Get(buildProfile)
	if buildMaxDim > 0 {
		prof.MaxDim = buildMaxDim
	}
	if buildPunch > 0 {
		prof.Punch = buildPunch
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (max_dim=%d, punch=%.2f)", prof.Name, prof.MaxDim, prof.Punch)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   buildWorkers,
		Verbose:   verbose,
		Previews:  buildPreviews,
		Log:       cmd.ErrOrStderr(),
	})

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	var manifestSize int64
	if info, err := os.Stat(manifestPath); err == nil {
		manifestSize = info.Size()
	}
	printBuildReport(cmd.OutOrStdout(), m, manifestSize, time.Since(start))
	return nil
}

func printBuildReport(w io.Writer, m *manifest.Manifest, manifestSize int64, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  blurhash build complete")
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Assets:      %d\n", s.TotalAssets)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed:      %d\n", s.Failed)
	}
	fmt.Fprintf(w, "  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Hash bytes:  %d", s.TotalHashBytes)
	if s.TotalAssets > 0 {
		fmt.Fprintf(w, "  (avg %.1f chars)", float64(s.TotalHashBytes)/float64(s.TotalAssets))
	}
	fmt.Fprintln(w)
	if s.TotalPreviews > 0 {
		fmt.Fprintf(w, "  Previews:    %d  (%s)\n", s.TotalPreviews, formatBytes(s.TotalPreviewBytes))
	}
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Fprintln(w)

	// Heaviest sources and their hashes.
	if len(m.Assets) > 0 {
		keys := make([]string, 0, len(m.Assets))
		for key := range m.Assets {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := m.Assets[keys[i]], m.Assets[keys[j]]
			if a.Original.Size != b.Original.Size {
				return a.Original.Size > b.Original.Size
			}
			return keys[i] < keys[j]
		})
		n := min(len(keys), 10)
		fmt.Fprintf(w, "  Top %d heaviest:\n", n)
		for _, key := range keys[:n] {
			a := m.Assets[key]
			fmt.Fprintf(w, "    %-32s %8s  %s\n", truncKey(key, 32), formatBytes(a.Original.Size), a.BlurHash)
		}
		fmt.Fprintln(w)
	}

	if fmts := previewFormats(m); len(fmts) > 0 {
		fmt.Fprintf(w, "  Formats:     %s\n", strings.Join(fmts, ", "))
	}
	fmt.Fprintf(w, "  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(manifestSize))
	fmt.Fprintln(w)
}

// previewFormats lists the preview formats present in m, sorted.
func previewFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, a := range m.Assets {
		for _, p := range a.Previews {
			set[p.Format] = true
		}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
