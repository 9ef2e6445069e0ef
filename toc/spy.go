package toc

// Observation is the position of one heading relative to the top of the
// viewport.
type Observation struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Spy selects the active heading. A heading intersects when it overlaps
// the trigger region, the top TriggerRatio of the viewport.
type Spy struct {
	TriggerRatio float64
}

// DefaultSpy watches the top 30% of the viewport.
func DefaultSpy() Spy {
	return Spy{TriggerRatio: 0.3}
}

// Intersecting reports whether o overlaps the trigger region of a
// viewport of the given height.
func (s Spy) Intersecting(o Observation, viewport float64) bool {
	ratio := s.TriggerRatio
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultSpy().TriggerRatio
	}
	line := viewport * ratio
	return o.Bottom > 0 && o.Top < line
}

// Select returns the id of the intersecting heading closest to the top
// of the viewport, or "" when none intersects.
func (s Spy) Select(obs []Observation, viewport float64) string {
	best := -1
	for i, o := range obs {
		if !s.Intersecting(o, viewport) {
			continue
		}
		if best < 0 || o.Top < obs[best].Top {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return obs[best].ID
}
