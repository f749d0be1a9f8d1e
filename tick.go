package lockstep

import "github.com/oliverbestmann/lockstep/spoke"

// WrapTick maps a tick onto a ring of size n, which must be a power of two.
func WrapTick(tick spoke.Tick, n int) int {
	return int(tick) & (n - 1)
}
