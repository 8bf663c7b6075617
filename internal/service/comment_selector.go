// internal/service/comment_selector.go
package service

import (
	"math/rand"
	"time"
)

// ShuffleWindow is the interval simulated post timestamps are spread across,
// so a run of posts looks organic instead of instantaneous.
const ShuffleWindow = 600 * time.Second

// SelectComment picks one of the four comments and a whole-second offset
// inside the shuffle window. Both draws are uniform and independent. The
// random source is injected so callers can make the selection reproducible;
// this function never touches global random state.
func SelectComment(comments [4]string, rng *rand.Rand) (index int, offset time.Duration) {
	index = rng.Intn(len(comments))
	offset = time.Duration(rng.Intn(int(ShuffleWindow/time.Second))) * time.Second
	return index, offset
}
