package timeline

import "fmt"

// Group semantics are layered on the ParentID links: a layer is a group
// iff at least one other layer references it as parent. The property is
// derived from membership, never stored, so it cannot drift out of sync
// with the actual children.

// IsGroup reports whether any layer references the given id as parent.
func (m *Model) IsGroup(layerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.state.Layers {
		if l.ParentID == layerID {
			return true
		}
	}
	return false
}

// ChildLayers returns clones of the direct children of a group, in
// sibling index order.
func (m *Model) ChildLayers(groupID string) []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	children := m.siblingsLocked(groupID)
	out := make([]*Layer, len(children))
	for i, child := range children {
		out[i] = child.Clone()
	}
	return out
}

// ParentGroup returns a clone of the layer's parent, or nil for root
// layers and unknown ids.
func (m *Model) ParentGroup(layerID string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	layer := m.layerLocked(layerID)
	if layer == nil || layer.ParentID == "" {
		return nil
	}
	return m.layerLocked(layer.ParentID).Clone()
}

// WouldCreateCircularReference reports whether reparenting layerID under
// candidateParentID would make the layer its own transitive ancestor.
// The walk starts at the candidate itself, so parenting a layer under
// itself is also a cycle. UpdateLayer re-runs this check on every
// reparenting call, not only at creation time.
func (m *Model) WouldCreateCircularReference(layerID, candidateParentID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wouldCycleLocked(layerID, candidateParentID)
}

// wouldCycleLocked walks candidateParentID's ancestor chain looking for
// layerID. The step cap guards against walking a corrupted chain forever;
// validated state is always acyclic.
func (m *Model) wouldCycleLocked(layerID, candidateParentID string) bool {
	current := candidateParentID
	for steps := 0; current != "" && steps <= len(m.state.Layers); steps++ {
		if current == layerID {
			return true
		}
		parent := m.layerLocked(current)
		if parent == nil {
			return false
		}
		current = parent.ParentID
	}
	return false
}

// CreateGroup creates a new layer and reparents every member to it.
// Atomic: an empty member list or any unknown member id fails before any
// layer is created or reparented. Returns a clone of the group layer.
func (m *Model) CreateGroup(name string, memberLayerIDs []string) (*Layer, error) {
	m.mu.Lock()
	if len(memberLayerIDs) == 0 {
		m.mu.Unlock()
		return nil, newInvalidReference("group needs at least one member layer", "")
	}
	for _, id := range memberLayerIDs {
		if m.layerLocked(id) == nil {
			m.mu.Unlock()
			return nil, newLayerNotFound(id)
		}
	}

	group := &Layer{
		ID:         m.ids.Generate(),
		Name:       name,
		Visible:    true,
		IsExpanded: true,
		Index:      len(m.state.Layers),
		Keyframes:  []*Keyframe{},
		Tweens:     []*MotionTween{},
	}
	if group.Name == "" {
		group.Name = fmt.Sprintf("Group %d", len(m.state.Layers)+1)
	}
	m.state.Layers = append(m.state.Layers, group)

	events := []Event{{Kind: EventGroupCreated, LayerID: group.ID, Layer: group.Clone()}}
	for _, id := range memberLayerIDs {
		member := m.layerLocked(id)
		member.ParentID = group.ID
		events = append(events, Event{Kind: EventLayerUpdated, LayerID: id, Layer: member.Clone()})
	}
	snapshot := group.Clone()
	m.mu.Unlock()

	m.publish(events...)
	return snapshot, nil
}

// DeleteGroup removes a group layer. preserveChildren is a required,
// explicit choice: true reparents children to the group's own parent,
// false removes them recursively. Returns false for unknown ids.
func (m *Model) DeleteGroup(groupID string, preserveChildren bool) bool {
	policy := CascadeDeleteChildren
	if preserveChildren {
		policy = CascadeReparentChildren
	}
	return m.RemoveLayer(groupID, policy)
}

// LayerRow is one row of the flattened display tree: a layer clone and
// its nesting depth.
type LayerRow struct {
	Layer  *Layer
	Indent int
}

// LayersWithIndentation flattens the layer tree depth-first in sibling
// index order, skipping the subtree of any collapsed layer. This is the
// projection a layer-list panel renders from.
func (m *Model) LayersWithIndentation() []LayerRow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []LayerRow
	var walk func(parentID string, indent int)
	walk = func(parentID string, indent int) {
		for _, layer := range m.siblingsLocked(parentID) {
			rows = append(rows, LayerRow{Layer: layer.Clone(), Indent: indent})
			if layer.IsExpanded {
				walk(layer.ID, indent+1)
			}
		}
	}
	walk("", 0)
	return rows
}
