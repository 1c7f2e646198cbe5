package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/AnyUserName/blurhash-cli/blurhash"
	"github.com/AnyUserName/blurhash-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a built placeholder directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, _, err := manifest.Load(args[0])
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), m)
	return nil
}

func printStats(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Manifest version: %d\n", m.Version)
	fmt.Fprintf(w, "  Generated:        %s\n", m.GeneratedAt)
	fmt.Fprintf(w, "  Profile:          %s\n", m.Profile)
	if bi := m.BuildInfo; bi != nil {
		fmt.Fprintf(w, "  Workers:          %d\n", bi.Workers)
		fmt.Fprintf(w, "  Max dim:          %d\n", bi.MaxDim)
		fmt.Fprintf(w, "  Punch:            %.2f\n", bi.Punch)
	}
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Total assets:     %d\n", s.TotalAssets)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed sources:   %d\n", s.Failed)
	}
	fmt.Fprintf(w, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Hash bytes:       %d\n", s.TotalHashBytes)
	if s.TotalInputBytes > 0 {
		fmt.Fprintf(w, "  Hash/input:       %.4f%%\n", float64(s.TotalHashBytes)/float64(s.TotalInputBytes)*100)
	}
	fmt.Fprintf(w, "  Previews:         %d  (%s)\n", s.TotalPreviews, formatBytes(s.TotalPreviewBytes))
	fmt.Fprintln(w)

	// Component grid breakdown.
	grids := map[[2]int]int{}
	for _, a := range m.Assets {
		grids[a.Components]++
	}
	gridKeys := make([][2]int, 0, len(grids))
	for g := range grids {
		gridKeys = append(gridKeys, g)
	}
	sort.Slice(gridKeys, func(i, j int) bool {
		if gridKeys[i][0] != gridKeys[j][0] {
			return gridKeys[i][0] < gridKeys[j][0]
		}
		return gridKeys[i][1] < gridKeys[j][1]
	})
	fmt.Fprintln(w, "  Component breakdown:")
	for _, g := range gridKeys {
		fmt.Fprintf(w, "    %dx%d  %4d assets  (%d chars)\n", g[0], g[1], grids[g], blurhash.EncodedLen(g[0], g[1]))
	}
	fmt.Fprintln(w)

	// Per-format preview breakdown.
	type formatStat struct {
		count int
		bytes int64
	}
	formatStats := map[string]formatStat{}
	for _, a := range m.Assets {
		for _, p := range a.Previews {
			fs := formatStats[p.Format]
			fs.count++
			fs.bytes += p.Size
			formatStats[p.Format] = fs
		}
	}
	if len(formatStats) > 0 {
		fmt.Fprintln(w, "  Preview formats:")
		for _, f := range previewFormats(m) {
			fs := formatStats[f]
			fmt.Fprintf(w, "    %-5s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
		fmt.Fprintln(w)
	}

	valid := 0
	var warnings []string
	keys := make([]string, 0, len(m.Assets))
	for key := range m.Assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		a := m.Assets[key]
		switch {
		case a.BlurHash == "":
			warnings = append(warnings, fmt.Sprintf("asset %q missing blurhash", key))
		case !blurhash.IsValid(a.BlurHash):
			warnings = append(warnings, fmt.Sprintf("asset %q has a malformed blurhash", key))
		default:
			valid++
		}
		if a.AvgColor == nil {
			warnings = append(warnings, fmt.Sprintf("asset %q missing avg_color", key))
		}
	}
	fmt.Fprintf(w, "  BlurHash coverage: %d / %d assets\n", valid, len(m.Assets))

	if len(warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Warnings (%d):\n", len(warnings))
		for _, msg := range warnings {
			fmt.Fprintf(w, "    ⚠ %s\n", msg)
		}
	}
	fmt.Fprintln(w)
}
