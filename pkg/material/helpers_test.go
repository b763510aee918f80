package material

// fixedSampler always returns the same value
type fixedSampler float64

func (f fixedSampler) Get1D() float64 {
	return float64(f)
}

// sequenceSampler replays a fixed list of values, cycling when exhausted
type sequenceSampler struct {
	values []float64
	index  int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}
