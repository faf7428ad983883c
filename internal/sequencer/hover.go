package sequencer

// Geometry is the pointer position and the bounding box of the hovered row, in the
// same vertical coordinate space.
type Geometry struct {
	PointerY float64
	Top      float64
	Bottom   float64
}

// crossed reports whether the pointer went far enough over the hovered row to justify
// moving the dragged row into its slot. Moving down requires passing the midpoint,
// moving up requires going above it.
func crossed(dragIndex, hoverIndex int, g Geometry) bool {
	if dragIndex == hoverIndex {
		return false
	}
	middle := (g.Bottom - g.Top) / 2
	offset := g.PointerY - g.Top
	if dragIndex < hoverIndex && offset < middle {
		return false
	}
	if dragIndex > hoverIndex && offset > middle {
		return false
	}
	return true
}
