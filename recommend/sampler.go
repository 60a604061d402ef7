// ABOUTME: Splits the pinned set into seed batches for the recommendation provider
// ABOUTME: Balances non-primary usage with weighted sampling so every pinned track leads one batch

package recommend

import "fmt"

// MaxAccuracy is the largest seed batch the provider accepts
const MaxAccuracy = 5

// Rand is the random source used for sampling. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// BuildBatches partitions pinned into seed batches of size k.
//
//   - k == 1: one single-track batch per pinned track
//   - len(pinned) <= k: one batch with every pinned track
//   - otherwise: one batch per pinned track with that track first, filled with
//     k-1 distinct other tracks drawn with weight total-occurrences[j], so tracks
//     that served as filler less often are preferred in later batches
//
// k < 1 is a programming error and panics.
func BuildBatches(pinned []int, k int, rng Rand) [][]int {
	if k < 1 {
		panic(fmt.Sprintf("recommend: batch size %d < 1", k))
	}

	n := len(pinned)

	switch {
	case n == 0:
		return nil
	case k == 1:
		batches := make([][]int, n)
		for i, idx := range pinned {
			batches[i] = []int{idx}
		}

		return batches
	case n <= k:
		return [][]int{append([]int(nil), pinned...)}
	}

	occurrences := make([]int, n)
	total := 0
	weights := make([]float64, n)
	inBatch := make([]bool, n)
	batches := make([][]int, 0, n)

	for primary := range n {
		positions := make([]int, 1, k)
		positions[0] = primary
		inBatch[primary] = true

		for len(positions) < k {
			j := drawWeighted(rng, weights, inBatch, occurrences, total)
			inBatch[j] = true
			positions = append(positions, j)
		}

		batch := make([]int, k)
		for i, pos := range positions {
			batch[i] = pinned[pos]
			inBatch[pos] = false
		}

		for _, pos := range positions[1:] {
			occurrences[pos]++
		}

		total += k
		batches = append(batches, batch)
	}

	return batches
}

// drawWeighted picks one position not yet in the batch.
// Weight is total-occurrences[j], or 1 for every track before any batch exists.
// Falls back to a uniform draw when all eligible weights are zero.
func drawWeighted(rng Rand, weights []float64, inBatch []bool, occurrences []int, total int) int {
	var sum float64

	eligible := 0

	for j := range weights {
		weights[j] = 0
		if inBatch[j] {
			continue
		}

		eligible++

		if total == 0 {
			weights[j] = 1
		} else {
			weights[j] = float64(total - occurrences[j])
		}

		sum += weights[j]
	}

	if sum <= 0 {
		pick := rng.IntN(eligible)
		for j := range inBatch {
			if inBatch[j] {
				continue
			}

			if pick == 0 {
				return j
			}
			pick--
		}
	}

	target := rng.Float64() * sum
	last := -1

	for j, w := range weights {
		if w <= 0 {
			continue
		}

		last = j
		if target < w {
			return j
		}
		target -= w
	}

	// Rounding can leave target marginally above the final weight
	return last
}
