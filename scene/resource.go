package scene

// Geometry holds vertex and index buffers for a renderable mesh.
// Buffers are plain slices here; the renderer collaborator uploads
// them and keys GPU residency off this handle.
type Geometry struct {
	Positions []float32 // x,y,z triples
	Normals   []float32
	Indices   []uint32

	released bool
}

// Release frees the geometry buffers. It reports whether this call
// actually freed anything; repeated calls are no-ops.
func (g *Geometry) Release() bool {
	if g == nil || g.released {
		return false
	}
	g.Positions = nil
	g.Normals = nil
	g.Indices = nil
	g.released = true
	return true
}

// Released reports whether the geometry has been freed.
func (g *Geometry) Released() bool {
	return g == nil || g.released
}

// Texture is an image handle referenced by a material property.
type Texture struct {
	Name string
	Data []byte

	released bool
}

func (t *Texture) Release() bool {
	if t == nil || t.released {
		return false
	}
	t.Data = nil
	t.released = true
	return true
}

func (t *Texture) Released() bool {
	return t == nil || t.released
}

// Material describes surface shading for a mesh node. Texture slots
// may be nil.
type Material struct {
	Name      string
	ColorMap  *Texture
	NormalMap *Texture

	released bool
}

// Textures returns the non-nil texture slots.
func (m *Material) Textures() []*Texture {
	if m == nil {
		return nil
	}
	var out []*Texture
	if m.ColorMap != nil {
		out = append(out, m.ColorMap)
	}
	if m.NormalMap != nil {
		out = append(out, m.NormalMap)
	}
	return out
}

// Release frees the material object itself. Its textures are released
// separately (see DisposeGraph).
func (m *Material) Release() bool {
	if m == nil || m.released {
		return false
	}
	m.ColorMap = nil
	m.NormalMap = nil
	m.released = true
	return true
}

func (m *Material) Released() bool {
	return m == nil || m.released
}
