package trigram

// Infer runs the automaton for the given number of iterations and returns
// every generated string in order.
//
// The seed is normalized and padded with one trailing space. Each iteration
// keeps the first two and the last character of the previous string and
// replaces the characters in between with the most probable successor of the
// preceding window, or a space when the window is unknown to the model.
func Infer(seed string, model Model, iterations int) []string {
	if iterations <= 0 {
		return nil
	}

	current := []rune(Normalize(seed) + " ")
	out := make([]string, 0, iterations)

	for n := 0; n < iterations; n++ {
		next := make([]rune, 0, len(current)+1)
		next = append(next, current[:min(2, len(current))]...)

		for i := 0; i < len(current)-Size; i++ {
			r := ' '
			if dist, ok := model[string(current[i:i+Size])]; ok {
				if best, ok := dist.Best(); ok {
					r = best
				}
			}
			next = append(next, r)
		}

		next = append(next, current[len(current)-1])
		out = append(out, string(next))
		current = next
	}
	return out
}
