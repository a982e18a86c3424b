package layout

import "math/rand/v2"

// Scatter returns count positions in [0, width) derived from seed. The same
// seed always yields the same positions, and positions are distinct while
// count <= width.
func Scatter(seed int64, count, width int) []int {
	if count <= 0 || width <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(count)))
	taken := make(map[int]bool, count)
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		pos := rng.IntN(width)
		for j := 0; j < width && taken[pos]; j++ {
			pos = (pos + 1) % width
		}
		taken[pos] = true
		out = append(out, pos)
	}
	return out
}
