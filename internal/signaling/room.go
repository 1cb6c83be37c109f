package signaling

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// newRoomID creates a random, memorable room id from four different word
// lists, e.g. "otter-cocoa-meadow-calm". It retries while taken
// reports the candidate as in use.
func newRoomID(taken func(RoomID) bool) RoomID {
	pools := [][]string{animals, dishes, names, randomWords, adjectives, extras}

	for {
		order := shuffledIndexes(len(pools))
		words := make([]any, 4)
		for i := range words {
			pool := pools[order[i]]
			words[i] = pool[randomIndex(len(pool))]
		}

		id := RoomID(fmt.Sprintf("%s-%s-%s-%s", words...))
		if !taken(id) {
			return id
		}
	}
}

// shuffledIndexes returns 0..n-1 in random order (Fisher-Yates).
func shuffledIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := randomIndex(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}

// randomIndex returns a cryptographically secure random index in [0, max).
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(fmt.Sprintf("signaling: random source failed: %v", err))
	}
	return int(n.Int64())
}
