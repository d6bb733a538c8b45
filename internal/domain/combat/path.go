package combat

// ComputePath returns the intermediate cells between from and to using
// straight-line monotonic stepping: each step moves one cell toward the
// target on each axis that still differs. The result is cosmetic, used
// only for animation pacing and hover previews. It is never authoritative
// for movement cost or legality; the server owns both.
func ComputePath(from, to Position) []Position {
	path := []Position{}
	cur := from
	for cur != to {
		if cur.X < to.X {
			cur.X++
		} else if cur.X > to.X {
			cur.X--
		}
		if cur.Y < to.Y {
			cur.Y++
		} else if cur.Y > to.Y {
			cur.Y--
		}
		path = append(path, cur)
	}
	return path
}
