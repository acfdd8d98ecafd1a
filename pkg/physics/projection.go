package physics

// Projection is the scalar interval a shape covers along an axis
type Projection struct {
	Min float64
	Max float64
}

// Overlaps reports whether two projections share any interior
func (p Projection) Overlaps(other Projection) bool {
	return p.Max > other.Min && other.Max > p.Min
}

// GetOverlap returns the amount of overlap between two projections, 0 when disjoint
func (p Projection) GetOverlap(other Projection) float64 {
	if !p.Overlaps(other) {
		return 0
	}
	if p.Max > other.Max {
		return other.Max - p.Min
	}
	return p.Max - other.Min
}
