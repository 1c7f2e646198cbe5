package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/blurhash-cli/internal/encoder"
	"github.com/AnyUserName/blurhash-cli/internal/manifest"
	"github.com/AnyUserName/blurhash-cli/internal/profile"
	"golang.org/x/sync/errgroup"
)

// Config holds all parameters for a build pipeline run.
type Config struct {
	InputDir  string
	OutputDir string
	Profile   profile.Profile
	Workers   int
	Verbose   bool
	Previews  bool      // write decoded placeholder files next to the manifest
	Log       io.Writer // verbose and warning output; defaults to stderr
}

// Pipeline orchestrates placeholder generation for a directory.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	logMu    sync.Mutex
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

// Run executes the full build pipeline and returns the manifest.  Sources
// that fail are reported and counted; the run only fails when every
// source fails or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	if p.cfg.Previews {
		p.logf("%s", p.registry.String())
	}

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir, p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.logf("found %d images", len(sources))
	unique, errs := uniqueKeys(sources)

	// Step 2: Encode in parallel.  The codec keeps no shared state, so the
	// only coordination is the worker limit.
	results := make([]processResult, len(unique))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, src := range unique {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.logf("processing: %s", src.Key)
			results[i] = p.processImage(src)
			if results[i].err == nil {
				p.logf("done: %s %s (%d previews)", src.Key, results[i].asset.BlurHash, len(results[i].asset.Previews))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 3: Collect results into manifest.
	m := manifest.New(p.cfg.Profile.Name)

	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
	}

	// Report errors but don't fail the entire build for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			p.warnf("error: %v", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", len(errs))
		}
		p.warnf("warning: %d of %d images had errors", len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		MaxDim:  p.cfg.Profile.MaxDim,
		Punch:   p.cfg.Profile.Punch,
	}
	m.Stats.Failed = len(errs)
	m.ComputeStats()
	return m, nil
}

// logf prints only when Verbose is set.
func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		p.warnf(format, args...)
	}
}

func (p *Pipeline) warnf(format string, args ...any) {
	p.logMu.Lock()
	defer p.logMu.Unlock()
	fmt.Fprintf(p.cfg.Log, "[blurhash] "+format+"\n", args...)
}
