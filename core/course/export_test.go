package course

// SetRandIntn swaps the course ID source; tests use it to force
// collisions deterministically.
func SetRandIntn(fn func(int) int) (restore func()) {
	old := randIntn
	randIntn = fn
	return func() { randIntn = old }
}
