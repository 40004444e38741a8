// Package group maintains derived membership collections over meshes and
// nodesets: element groups and node groups with change tracking, and an
// owner group coordinating face and node propagation between them.
// Membership of every group is also exposed as a boolean-valued field.
package group

import (
	"github.com/dbrnz/zinc-sub001/labels"
)

// SubelementHandlingMode controls whether adding or removing an element
// in an element group also adds or removes its faces and nodes in the
// related sub-groups of the owner.
type SubelementHandlingMode uint8

const (
	// ModeNone performs no propagation; each group is edited directly.
	ModeNone SubelementHandlingMode = iota
	// ModeFull propagates element adds and removes recursively through
	// faces down to nodes.
	ModeFull
)

// String returns the mode name.
func (m SubelementHandlingMode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeFull:
		return "FULL"
	}
	return "INVALID"
}

// SubobjectGroup is the base state embedded in every concrete group: the
// accumulated change detail and an optional non-owning back-reference to
// the owner group coordinating related sub-groups. The handling mode is
// looked up through the owner and defaults to no propagation when the
// group stands alone.
type SubobjectGroup struct {
	detail labels.ChangeDetail
	owner  *OwnerGroup
}

// Owner returns the coordinating owner group, or nil for a standalone
// group.
func (s *SubobjectGroup) Owner() *OwnerGroup {
	return s.owner
}

// HandlingMode returns the owner's subelement handling mode, or ModeNone
// when the group has no owner.
func (s *SubobjectGroup) HandlingMode() SubelementHandlingMode {
	if s.owner == nil {
		return ModeNone
	}
	return s.owner.mode
}

// ChangeSummary returns the accumulated add/remove flags without
// clearing them.
func (s *SubobjectGroup) ChangeSummary() labels.Change {
	return s.detail.Summary()
}

// ExtractChangeSummary returns the accumulated add/remove flags and
// clears them in one step.
func (s *SubobjectGroup) ExtractChangeSummary() labels.Change {
	return s.detail.Extract()
}
