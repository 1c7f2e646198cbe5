package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_Fallback(t *testing.T) {
	p := Get("does-not-exist")
	assert.Equal(t, "does-not-exist", p.Name, "requested name is preserved")
	assert.Equal(t, Get("default").XComponents, p.XComponents)
	assert.Equal(t, Get("default").MaxDim, p.MaxDim)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"default", "detailed", "minimal"}, Names())
}

func TestComponents_Fixed(t *testing.T) {
	x, y := Get("default").Components(1920, 200)
	assert.Equal(t, 4, x)
	assert.Equal(t, 3, y)

	p := Profile{XComponents: 12, YComponents: 4}
	x, y = p.Components(10, 10)
	assert.Equal(t, 9, x, "fixed counts are clamped to the codec limit")
	assert.Equal(t, 4, y)
}

func TestComponents_Auto(t *testing.T) {
	p := Get("detailed")
	cases := []struct {
		w, h, x, y int
	}{
		{100, 100, 6, 6},
		{1600, 900, 6, 3},
		{900, 1600, 3, 6},
		{4000, 10, 6, 1},
		{0, 0, 6, 6},
	}
	for _, c := range cases {
		x, y := p.Components(c.w, c.h)
		assert.Equal(t, [2]int{c.x, c.y}, [2]int{x, y}, "%dx%d", c.w, c.h)
	}

	x, y := Profile{AutoComponents: 20}.Components(300, 100)
	assert.Equal(t, 9, x)
	assert.Equal(t, 7, y)
}

func TestPreviewSize(t *testing.T) {
	p := Get("default")
	w, h := p.PreviewSize(800, 600)
	assert.Equal(t, 32, w)
	assert.Equal(t, 24, h)

	w, h = p.PreviewSize(20, 10)
	assert.Equal(t, 20, w, "no upscale")
	assert.Equal(t, 10, h)

	w, h = p.PreviewSize(4000, 10)
	assert.Equal(t, 32, w)
	assert.Equal(t, 1, h)
}
