package scene

// Kind identifies what a node carries. The disposer only knows how to
// release resources for the kinds listed here; anything else is
// treated as an opaque leaf.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLight
	// KindExternal marks nodes injected by a collaborator (audio
	// emitters, UI anchors). DisposeGraph detaches but does not try
	// to release their payload.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Recipe rebuilds a node from scratch. The culling manager stores the
// recipe of every managed node so it can re-instantiate the node after
// unloading its resources.
type Recipe func() (*Node, error)

// Node is one element of a level's scene subtree. Positions are local
// translations relative to the parent; this layer does not model
// rotation or scale, which belong to the renderer collaborator.
type Node struct {
	Name    string
	Kind    Kind
	Pos     Vec3
	Radius  float32 // bounding sphere radius, used by frustum tests
	Opacity float32
	Visible bool

	Geometry *Geometry
	Material *Material

	// Gen is the owning level's generation stamp. Scanners check it
	// before touching the node so a level mid-disposal is never
	// mutated from outside.
	Gen uint64

	// Recipe, when set, makes this node eligible for residency
	// management.
	Recipe Recipe

	parent   *Node
	children []*Node
	disposed bool
}

// NewNode creates a visible, fully opaque node.
func NewNode(name string, kind Kind) *Node {
	return &Node{Name: name, Kind: kind, Opacity: 1, Visible: true}
}

// AddChild attaches c under n. A node already attached elsewhere is
// detached first.
func (n *Node) AddChild(c *Node) {
	if n == nil || c == nil || c == n {
		return
	}
	if c.parent != nil {
		c.Detach()
	}
	c.parent = n
	n.children = append(n.children, c)
}

// Detach removes n from its parent, leaving n and its descendants
// intact.
func (n *Node) Detach() {
	if n == nil || n.parent == nil {
		return
	}
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Parent returns the node this node is attached under, if any.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns the direct children in attach order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Disposed reports whether DisposeGraph has already run on this node.
func (n *Node) Disposed() bool {
	return n == nil || n.disposed
}

// WorldPos returns the node position accumulated through its
// ancestors.
func (n *Node) WorldPos() Vec3 {
	var p Vec3
	for cur := n; cur != nil; cur = cur.parent {
		p = p.Add(cur.Pos)
	}
	return p
}

// Walk visits n and every descendant depth-first. Returning false from
// fn stops descent below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}
