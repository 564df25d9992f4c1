package redis

import (
	"fmt"

	"github.com/mcoot/shootout/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "shootout"

// playerKey returns the Redis key for a Player hash
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// chargeKey returns the Redis key for an outstanding charge
func chargeKey(id model.OutcomeID) string {
	return fmt.Sprintf("%s:charge:%s", keyPrefix, id)
}

// Hash fields of a player record
const (
	hashID                  = "id"
	hashIsVested            = "is_vested"
	hashIncapacitated       = "incapacitated"
	hashLastIncapacitatedAt = "last_incapacitated_at"
	hashCreatedAt           = "created_at"
)
