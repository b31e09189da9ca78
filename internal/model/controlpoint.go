package model

import "sort"

// ControlPoint is a marker attached to a graphic, addressed by Index
type ControlPoint struct {
	Index int
	X     int
	Y     int
}

// ControlPointSet keeps control points ordered by index. Two points with the
// same index are the same point.
type ControlPointSet struct {
	points []ControlPoint // sorted by Index, no duplicates
}

// search returns the position of index, or where it would be inserted
func (s *ControlPointSet) search(index int) (int, bool) {
	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Index >= index
	})
	return i, i < len(s.points) && s.points[i].Index == index
}

// Set inserts a control point or updates the coordinates of the existing
// point with the same index.
func (s *ControlPointSet) Set(index, x, y int) {
	i, found := s.search(index)
	if found {
		s.points[i].X = x
		s.points[i].Y = y
		return
	}
	s.points = append(s.points, ControlPoint{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = ControlPoint{Index: index, X: x, Y: y}
}

// Has reports whether a control point with index exists
func (s *ControlPointSet) Has(index int) bool {
	_, found := s.search(index)
	return found
}

// Get returns the control point with index
func (s *ControlPointSet) Get(index int) (ControlPoint, error) {
	i, found := s.search(index)
	if !found {
		return ControlPoint{}, Errorf(ErrNotFound, "control point %d not found", index)
	}
	return s.points[i], nil
}

// Remove deletes the control point with index. It returns false if there was
// none.
func (s *ControlPointSet) Remove(index int) bool {
	i, found := s.search(index)
	if !found {
		return false
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	return true
}

// Highest returns the control point with the largest index
func (s *ControlPointSet) Highest() (ControlPoint, error) {
	if len(s.points) == 0 {
		return ControlPoint{}, Errorf(ErrNotFound, "no control points")
	}
	return s.points[len(s.points)-1], nil
}

// All returns every control point in ascending index order
func (s *ControlPointSet) All() []ControlPoint {
	out := make([]ControlPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of control points
func (s *ControlPointSet) Len() int {
	return len(s.points)
}

// Clear removes every control point
func (s *ControlPointSet) Clear() {
	s.points = nil
}

// Equal reports whether both sets hold the same points
func (s *ControlPointSet) Equal(other *ControlPointSet) bool {
	if len(s.points) != len(other.points) {
		return false
	}
	for i := range s.points {
		if s.points[i] != other.points[i] {
			return false
		}
	}
	return true
}
