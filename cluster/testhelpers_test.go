package cluster

import (
	"math/rand/v2"
)

func randomSeries(n int, seed uint64) []float64 {
	prng := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	data := make([]float64, n)
	for i := range data {
		data[i] = prng.NormFloat64()
	}
	return data
}
