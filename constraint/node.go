package constraint

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/vmath"
)

// NodeResolver resolves an external scene node to its live world transform
type NodeResolver interface {
	ResolveNode(id string) (vmath.Transform, bool)
}

// NodeMap is an in-memory NodeResolver
type NodeMap struct {
	mu    sync.RWMutex
	nodes map[string]vmath.Transform
}

func NewNodeMap() *NodeMap {
	return &NodeMap{nodes: make(map[string]vmath.Transform)}
}

// Set places or moves a node
func (m *NodeMap) Set(id string, t vmath.Transform) {
	m.mu.Lock()
	m.nodes[id] = t
	m.mu.Unlock()
}

func (m *NodeMap) Delete(id string) {
	m.mu.Lock()
	delete(m.nodes, id)
	m.mu.Unlock()
}

func (m *NodeMap) ResolveNode(id string) (vmath.Transform, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.nodes[id]
	return t, ok
}

// NodeBoneConstraint binds a bone to an external node
// Resolve = node position + node rotation * position offset, node rotation * rotation offset
type NodeBoneConstraint struct {
	base
	resolver NodeResolver
	node     string
}

func NewNodeBoneConstraint(id string, bone core.BoneID, shouldBeApplied bool, resolver NodeResolver, node string) (*NodeBoneConstraint, error) {
	c := &NodeBoneConstraint{resolver: resolver, node: node}
	if err := c.initBase(id, KindNode, bone, shouldBeApplied); err != nil {
		return nil, err
	}
	c.resolve = c.resolveNode
	return c, nil
}

// Node returns the reference node id
func (c *NodeBoneConstraint) Node() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.node
}

// SetNode changes the reference node
func (c *NodeBoneConstraint) SetNode(id string) {
	c.mu.Lock()
	c.node = id
	c.mu.Unlock()
}

func (c *NodeBoneConstraint) resolveNode() (vmath.Transform, error) {
	node := c.Node()
	ref, ok := c.resolver.ResolveNode(node)
	if !ok {
		return vmath.Transform{}, fmt.Errorf("constraint %s: %w: %q", c.id, ErrNodeNotFound, node)
	}
	pos, rot := c.offsets()
	return ref.Compose(pos, rot), nil
}
