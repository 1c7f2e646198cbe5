package profile

import (
	"math"
	"sort"

	"github.com/AnyUserName/blurhash-cli/blurhash"
)

// Profile defines how placeholders are computed for a target UI.
type Profile struct {
	Name           string
	XComponents    int      // fixed component counts; 0 derives both from aspect ratio
	YComponents    int
	AutoComponents int      // components on the long axis when derived
	MaxDim         int      // longest side before encoding; 0 keeps the source size
	Punch          float64  // contrast for decoded previews
	PreviewWidth   int      // width of decoded preview files
	PreviewFormats []string // preview output formats in priority order
	Quality        int      // JPEG quality for previews, 1-100
}

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:           "default",
		XComponents:    4,
		YComponents:    3,
		MaxDim:         64,
		Punch:          1,
		PreviewWidth:   32,
		PreviewFormats: []string{"png"},
		Quality:        80,
	},
	"detailed": {
		Name:           "detailed",
		AutoComponents: 6,
		MaxDim:         128,
		Punch:          1.2,
		PreviewWidth:   64,
		PreviewFormats: []string{"png", "jpeg"},
		Quality:        85,
	},
	"minimal": {
		Name:           "minimal",
		XComponents:    3,
		YComponents:    3,
		MaxDim:         32,
		Punch:          1,
		PreviewWidth:   16,
		PreviewFormats: []string{"png"},
		Quality:        75,
	},
}

// Get returns a profile by name. Falls back to default if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["default"]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles alphabetically.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Components returns the component counts to use for a w×h image.
// Fixed counts win; otherwise the long axis gets AutoComponents and the
// short axis is scaled by the aspect ratio, both kept in [1, 9].
func (p Profile) Components(w, h int) (x, y int) {
	if p.XComponents > 0 && p.YComponents > 0 {
		return clampComponents(p.XComponents), clampComponents(p.YComponents)
	}
	long := p.AutoComponents
	if long <= 0 {
		long = 4
	}
	if w <= 0 || h <= 0 {
		return clampComponents(long), clampComponents(long)
	}
	if w >= h {
		short := int(math.Round(float64(long) * float64(h) / float64(w)))
		return clampComponents(long), clampComponents(short)
	}
	short := int(math.Round(float64(long) * float64(w) / float64(h)))
	return clampComponents(short), clampComponents(long)
}

// PreviewSize returns the preview dimensions for a w×h original,
// preserving aspect ratio and never upscaling.
func (p Profile) PreviewSize(w, h int) (int, int) {
	pw := p.PreviewWidth
	if pw <= 0 || pw > w {
		pw = w
	}
	ph := int(math.Round(float64(h) * float64(pw) / float64(w)))
	if ph < 1 {
		ph = 1
	}
	return pw, ph
}

func clampComponents(n int) int {
	if n < blurhash.MinComponents {
		return blurhash.MinComponents
	}
	if n > blurhash.MaxComponents {
		return blurhash.MaxComponents
	}
	return n
}
