package engine

// Stats is a point-in-time summary of the store.
type Stats struct {
	Count        int
	Capacity     int
	MaxCapacity  int
	GrowthEvents int
	Frames       uint64
	SystemCount  int
}

// Utilization returns the fraction of allocated slots holding live entities.
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Count) / float64(s.Capacity)
}

// CollectStats gathers statistics about the store and its scheduler.
func (e *Engine) CollectStats() Stats {
	return Stats{
		Count:        e.world.Count(),
		Capacity:     e.world.Capacity(),
		MaxCapacity:  e.world.entities.MaxCapacity(),
		GrowthEvents: e.world.GrowthEvents(),
		Frames:       e.scheduler.Frames(),
		SystemCount:  e.scheduler.SystemCount(),
	}
}
