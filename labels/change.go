package labels

// Change is a bitmask describing membership edits accumulated in a
// ChangeDetail since the last clear.
type Change uint8

const (
	ChangeNone   Change = 0
	ChangeAdd    Change = 1 << 0
	ChangeRemove Change = 1 << 1
)

// String returns the set flags as a readable list.
func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "NONE"
	case ChangeAdd:
		return "ADD"
	case ChangeRemove:
		return "REMOVE"
	case ChangeAdd | ChangeRemove:
		return "ADD|REMOVE"
	}
	return "INVALID"
}

// ChangeDetail accumulates add/remove flags between extractions. Flags
// are OR'd in, never overwritten, so a bit set between a Clear and the
// following Summary is never lost.
type ChangeDetail struct {
	mask Change
}

// NoteAdd records that at least one label was added.
func (d *ChangeDetail) NoteAdd() {
	d.mask |= ChangeAdd
}

// NoteRemove records that at least one label was removed.
func (d *ChangeDetail) NoteRemove() {
	d.mask |= ChangeRemove
}

// Summary returns the accumulated change flags.
func (d *ChangeDetail) Summary() Change {
	return d.mask
}

// Clear resets the accumulated flags to ChangeNone.
func (d *ChangeDetail) Clear() {
	d.mask = ChangeNone
}

// Extract returns the accumulated flags and clears them in one step.
func (d *ChangeDetail) Extract() Change {
	mask := d.mask
	d.mask = ChangeNone
	return mask
}
