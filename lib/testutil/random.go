package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
)

// RandomSwitch returns a function picking an index with the given
// weights. RandomSwitch(2, 3, 5) yields 0 20% of the time, 1 30% and
// 2 50%.
func RandomSwitch(weights ...int) func(rndm *rand.Rand) int {
	if len(weights) == 0 {
		panic("a random switch must have at least 1 weight")
	}

	var sum int
	for _, w := range weights {
		if w == 0 {
			panic("cannot have a weight of 0")
		}
		sum += w
	}

	return func(rndm *rand.Rand) int {
		value := rndm.Intn(sum)

		threshold := 0
		for i, w := range weights {
			threshold += w
			if value < threshold {
				return i
			}
		}
		panic(fmt.Sprintf("random value generated was out of bounds: %d", value))
	}
}

// RandomCsv generates a csv payload shaped like the faculty survey
// files, deterministic for a fixed seed.
func RandomCsv(rndm *rand.Rand, rows int) []byte {
	var b bytes.Buffer
	b.WriteString("Gender,Age,S.S.C (GPA),H.S.C (GPA)\n")

	gender := RandomSwitch(11, 9)
	for i := 0; i < rows; i++ {
		g := "Female"
		if gender(rndm) == 1 {
			g = "Male"
		}
		age := 18 + rndm.Intn(10)
		ssc := 2 + rndm.Float64()*3
		hsc := 2 + rndm.Float64()*3
		fmt.Fprintf(&b, "%s,%d,%.2f,%.2f\n", g, age, ssc, hsc)
	}
	return b.Bytes()
}
