package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelectCommentBounds(t *testing.T) {
	comments := [4]string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		index, offset := SelectComment(comments, rng)
		assert.GreaterOrEqual(t, index, 0)
		assert.Less(t, index, 4)
		assert.GreaterOrEqual(t, offset, time.Duration(0))
		assert.Less(t, offset, ShuffleWindow)
	}
}

func TestSelectCommentReproducible(t *testing.T) {
	comments := [4]string{"a", "b", "c", "d"}

	first := rand.New(rand.NewSource(7))
	second := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		index1, offset1 := SelectComment(comments, first)
		index2, offset2 := SelectComment(comments, second)
		assert.Equal(t, index1, index2)
		assert.Equal(t, offset1, offset2)
	}
}

// Chi-square goodness of fit over many draws. Critical values are for
// p=0.001, so a correct implementation fails this by accident about once in a
// thousand runs of the whole suite.
func TestSelectCommentUniform(t *testing.T) {
	comments := [4]string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(1))

	const trials = 40000
	var indexCounts [4]float64
	var offsetCounts [10]float64 // 60-second buckets

	for i := 0; i < trials; i++ {
		index, offset := SelectComment(comments, rng)
		indexCounts[index]++
		offsetCounts[int(offset/(60*time.Second))]++
	}

	indexStat := 0.0
	expected := float64(trials) / 4
	for _, observed := range indexCounts {
		diff := observed - expected
		indexStat += diff * diff / expected
	}
	// df=3, p=0.001
	assert.Less(t, indexStat, 16.27, "comment index distribution is not uniform")

	offsetStat := 0.0
	expected = float64(trials) / 10
	for _, observed := range offsetCounts {
		diff := observed - expected
		offsetStat += diff * diff / expected
	}
	// df=9, p=0.001
	assert.Less(t, offsetStat, 27.88, "offset distribution is not uniform")
}
