package cmd

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/AnyUserName/blurhash-cli/blurhash"
	"github.com/AnyUserName/blurhash-cli/internal/pipeline"
	"github.com/AnyUserName/blurhash-cli/internal/profile"
	"github.com/spf13/cobra"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	encodeX      int
	encodeY      int
	encodeMaxDim int
	encodeAuto   bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <image>...",
	Short: "Print the blur hash of one or more images",
	Long: `Decodes each image (png, jpeg, gif, webp, bmp, tiff), shrinks it so the
longest side is at most --max-dim, and prints its blur hash.  With more
than one file each line is "<hash>  <path>".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().IntVarP(&encodeX, "x-components", "x", 4, "horizontal components (1-9)")
	encodeCmd.Flags().IntVarP(&encodeY, "y-components", "y", 3, "vertical components (1-9)")
	encodeCmd.Flags().IntVar(&encodeMaxDim, "max-dim", 64, "downscale so the longest side fits (0 = no resize)")
	encodeCmd.Flags().BoolVar(&encodeAuto, "auto", false, "pick components from the aspect ratio (overrides -x/-y)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		hash, err := encodeFile(path)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), hash)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", hash, path)
		}
	}
	return nil
}

func encodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	b := img.Bounds()
	xc, yc := encodeX, encodeY
	if encodeAuto {
		xc, yc = profile.Profile{AutoComponents: max(encodeX, encodeY)}.Components(b.Dx(), b.Dy())
	}

	small := pipeline.Downscale(img, encodeMaxDim)
	logVerbose("%s: %s %dx%d → %dx%d, components %dx%d",
		path, format, b.Dx(), b.Dy(), small.Bounds().Dx(), small.Bounds().Dy(), xc, yc)

	hash, err := blurhash.EncodeImage(small, xc, yc)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return hash, nil
}
