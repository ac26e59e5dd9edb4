package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/vec"
	"github.com/san-kum/sphgas/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 2))

	c := viz.NewCanvas(3, 2)
	c.Set(0, 0)
	c.Set(5, 7)
	svg := CanvasToSVG(c, 2)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, `width="12" height="16"`)
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `cx="1.0" cy="1.0"`)
	assert.Contains(t, svg, `cx="11.0" cy="15.0"`)
}

func TestParticlesToSVG(t *testing.T) {
	cam := viz.NewCamera(vec.Zero(), 2, 2)
	pos := []vec.Vec3{{}, {X: 0.5}, {X: 3}}

	svg := ParticlesToSVG(cam, pos, []float64{1, 8, 1}, 100, 100)
	assert.Equal(t, 2, strings.Count(svg, "<circle"), "the third particle is out of view")
	assert.Contains(t, svg, `cx="50" cy="50" r="1.50"`)
	assert.Contains(t, svg, `cx="75" cy="50" r="2.00"`)

	svg = ParticlesToSVG(cam, pos, nil, 100, 100)
	assert.Contains(t, svg, `r="1.00"`)
}

func TestSeriesToSVG(t *testing.T) {
	svg, err := SeriesToSVG([]float64{0, 1, 2}, []float64{5, 5, 5}, 120, 60, "#00ff88")
	require.NoError(t, err)
	assert.Contains(t, svg, `stroke="#00ff88"`)
	assert.Equal(t, 2, strings.Count(svg, " L"))
	assert.Contains(t, svg, "M10.0,30.0")

	_, err = SeriesToSVG([]float64{0, 1}, []float64{1}, 10, 10, "red")
	assert.ErrorIs(t, err, dynamo.ErrConfig)
	_, err = SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "red")
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}
