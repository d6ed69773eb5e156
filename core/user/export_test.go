package user

// SetRandIntn swaps the ID digit source; tests use it to force
// collisions deterministically.
func SetRandIntn(fn func(int) int) (restore func()) {
	old := randIntn
	randIntn = fn
	return func() { randIntn = old }
}
