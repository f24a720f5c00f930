package game

// maxCareRecipients bounds how many young one parent feeds per tick.
const maxCareRecipients = 3

// provideCare lets a parent in cooldown transfer energy and water to its own
// nearby young, scaled by its class care intensity.
func (s *Simulation) provideCare(i int) {
	st := s.store
	cfg := s.cfg.Care
	intensity := st.Genome[i].Class.CareIntensity()
	if intensity <= 0 || !st.Alive(i) {
		return
	}
	amount := cfg.Transfer * intensity
	x, y := int(st.X[i]), int(st.Y[i])
	id := st.ID[i]
	r := cfg.Radius

	fed := 0
	for dy := -r; dy <= r && fed < maxCareRecipients; dy++ {
		for dx := -r; dx <= r && fed < maxCareRecipients; dx++ {
			j := s.occ.At(x+dx, y+dy)
			if j < 0 || j == i || st.Adult[j] || st.ParentID[j] != id {
				continue
			}
			if st.Energy[i] <= amount || st.Hydration[i] <= amount {
				return
			}
			st.Energy[j] = clamp01(st.Energy[j] + amount)
			st.Hydration[j] = clamp01(st.Hydration[j] + amount)
			st.Energy[i] -= amount * cfg.Cost
			st.Hydration[i] -= amount * cfg.Cost
			fed++
		}
	}
}
