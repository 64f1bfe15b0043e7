package terrain

import (
	"context"
	"fmt"

	"github.com/mvelle/wayfarer/scene"
)

// buildGrid samples height over a (segments+1)² vertex grid centered
// on the origin and triangulates it. Generating a large grid is the
// terrain component's asynchronous boundary, so ctx is checked
// between rows.
func buildGrid(ctx context.Context, size float32, segments int, height func(x, z float32) float32) (*scene.Geometry, error) {
	if segments < 1 {
		return nil, fmt.Errorf("terrain: grid needs at least 1 segment")
	}
	verts := segments + 1
	step := size / float32(segments)
	half := size / 2

	positions := make([]float32, 0, verts*verts*3)
	normals := make([]float32, 0, verts*verts*3)
	for iz := 0; iz < verts; iz++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("terrain: grid generation: %w", err)
		}
		z := -half + float32(iz)*step
		for ix := 0; ix < verts; ix++ {
			x := -half + float32(ix)*step
			positions = append(positions, x, height(x, z), z)
			nx, ny, nz := gridNormal(x, z, step, height)
			normals = append(normals, nx, ny, nz)
		}
	}

	indices := make([]uint32, 0, segments*segments*6)
	for iz := 0; iz < segments; iz++ {
		for ix := 0; ix < segments; ix++ {
			a := uint32(iz*verts + ix)
			b := a + 1
			c := a + uint32(verts)
			d := c + 1
			indices = append(indices, a, c, b, b, c, d)
		}
	}

	return &scene.Geometry{Positions: positions, Normals: normals, Indices: indices}, nil
}

// gridNormal approximates the surface normal by central differences.
func gridNormal(x, z, step float32, height func(x, z float32) float32) (float32, float32, float32) {
	hx := height(x+step, z) - height(x-step, z)
	hz := height(x, z+step) - height(x, z-step)
	n := scene.Vec3{X: -hx, Y: 2 * step, Z: -hz}.Normalized()
	return n.X, n.Y, n.Z
}
