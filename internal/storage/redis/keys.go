package redis

import (
	"fmt"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
)

// Key prefix for all rating-tracker data
const keyPrefix = "wizardelo"

// identityKey returns the Redis key for a PlayerIdentity
func identityKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, id)
}

// identityIndexKey returns the Redis key for the SET of all identity ids
func identityIndexKey() string {
	return fmt.Sprintf("%s:idx:identities", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameIndexKey returns the Redis key for the SET of all game ids
func gameIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}
