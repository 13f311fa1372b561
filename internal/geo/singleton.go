package geo

// Singleton is a single point.
type Singleton struct {
	Point []float64
}

func NewSingleton(p []float64) *Singleton { return &Singleton{Point: p} }

// Origin returns the singleton {0} in dimension n.
func Origin(n int) *Singleton { return &Singleton{Point: make([]float64, n)} }

func (s *Singleton) Dim() int { return len(s.Point) }

func (s *Singleton) Support(d []float64) float64 {
	v := 0.0
	for i := range d {
		v += d[i] * s.Point[i]
	}
	return v
}

func (s *Singleton) Box() *Hyperrectangle {
	return &Hyperrectangle{
		Center: append([]float64(nil), s.Point...),
		Radius: make([]float64, len(s.Point)),
	}
}
