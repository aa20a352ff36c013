package content

// HealthInfo is an entity's current and maximum hit points.
type HealthInfo struct {
	Current int32
	Max     int32
}

func FullHealth(max int32) HealthInfo {
	return HealthInfo{Current: max, Max: max}
}

// Reduce returns the health after taking amount damage. The result is not
// clamped: a non-positive Current is how death is detected downstream.
func (h HealthInfo) Reduce(amount int32) HealthInfo {
	h.Current -= amount
	return h
}

func (h HealthInfo) Dead() bool { return h.Current <= 0 }
