package geoprep

// CheckMatchingCRS returns true if every object has a CRS and all objects have
// the same CRS. It returns false for an empty slice.
func CheckMatchingCRS(objects []Georeferenced) bool {
	codes := make(map[int]struct{})
	for _, object := range objects {
		if object == nil {
			return false
		}
		code, ok := object.CRS()
		if !ok {
			return false
		}
		codes[code] = struct{}{}
	}
	return len(codes) == 1
}
