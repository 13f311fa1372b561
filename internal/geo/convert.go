package geo

// ToZonotope converts or over-approximates a set as a zonotope. Exact for
// zonotopes, boxes, singletons, and lazy compositions of those that stay
// zonotopic (linear maps, Minkowski sums); other shapes fall back to the
// bounding box, the one place precision is deliberately traded.
func ToZonotope(s Set) *Zonotope {
	switch v := s.(type) {
	case *Zonotope:
		return v
	case *Hyperrectangle:
		return ZonotopeFromBox(v)
	case *Singleton:
		return NewZonotope(append([]float64(nil), v.Point...), nil)
	case *LinearMap:
		return ToZonotope(v.X).Map(v.M)
	case *MinkowskiSum:
		return ToZonotope(v.X).Sum(ToZonotope(v.Y))
	case *SymmetricIntervalHull:
		return ZonotopeFromBox(v.Concretize())
	case *ConvexHull:
		return HullZonotopes(ToZonotope(v.X), ToZonotope(v.Y))
	default:
		return ZonotopeFromBox(s.Box())
	}
}
