package hunt

// Score returns the points earned for the visited ids and the points
// available across the whole catalog. It ignores the project's scoring mode;
// hiding points from participants is up to the caller (see
// Project.ScoreVisible).
func Score(catalog []Location, visited map[string]struct{}) (earned, possible int) {
	for _, l := range catalog {
		possible += l.ScorePoints
		if _, ok := visited[l.ID]; ok {
			earned += l.ScorePoints
		}
	}
	return earned, possible
}
