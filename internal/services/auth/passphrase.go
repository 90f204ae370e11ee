package auth

import (
	"fmt"

	"github.com/mcoot/tycoon-backend/internal/dependencies/random"
)

var adjectives = []string{
	"BRAVE", "CALM", "DARK", "FAST", "GOLD", "HAPPY", "ICY", "KEEN", "LOUD", "MILD",
	"NEAT", "ODD", "PINK", "QUICK", "RED", "SAFE", "TALL", "VAST", "WARM", "ZESTY",
}

var nouns = []string{
	"BEAR", "CAT", "DEER", "ELK", "FOX", "GOAT", "HAWK", "IBIS", "JAY", "KITE",
	"LION", "MOON", "NEWT", "OWL", "PIKE", "QUAIL", "ROSE", "STAR", "TOAD", "WOLF",
}

// Suffixes run from 10 to 99 so every passphrase has a two-digit tail
const (
	suffixMin   = 10
	suffixCount = 90
)

// GeneratePassphrase returns an ADJECTIVE-NOUN-NN recovery passphrase
func GeneratePassphrase(rng random.Random) string {
	adj := adjectives[rng.Intn(len(adjectives))]
	noun := nouns[rng.Intn(len(nouns))]
	num := suffixMin + rng.Intn(suffixCount)
	return fmt.Sprintf("%s-%s-%d", adj, noun, num)
}
