package redis

import (
	"fmt"

	"github.com/mcoot/tycoon-backend/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "tycoon"

// Key generation functions for each entity type

// playerKey returns the Redis key for a player HASH
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// scoresKey returns the Redis key for a player's score components HASH
func scoresKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:scores:%s", keyPrefix, id)
}

// saveKey returns the Redis key for a player's cloud save
func saveKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:save:%s", keyPrefix, id)
}

// passphraseIndexKey returns the Redis key for the passphrase -> player_id index
func passphraseIndexKey(passphrase string) string {
	return fmt.Sprintf("%s:idx:passphrase:%s", keyPrefix, passphrase)
}

// usernameIndexPrefix is the prefix of every username index key
func usernameIndexPrefix() string {
	return fmt.Sprintf("%s:idx:username:", keyPrefix)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return usernameIndexPrefix() + username
}

// playersIndexKey returns the Redis key for the ZSET of all players,
// scored by creation time in microseconds
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}
