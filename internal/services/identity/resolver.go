package identity

import (
	"context"
	"log/slog"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// MergeMap maps a duplicate identity id to its primary identity id.
// Absence of a key means the identity is already primary.
type MergeMap map[model.IdentityID]model.IdentityID

// Resolve follows the map for the given id, returning the primary id
func (m MergeMap) Resolve(id model.IdentityID) model.IdentityID {
	if primary, ok := m[id]; ok {
		return primary
	}
	return id
}

// Resolver builds canonical-identity lookup tables so duplicate or
// merged identities are treated as one rating subject. A built map is
// only valid for a single processing batch; identities may be merged
// concurrently by identity management.
type Resolver struct {
	storage storage.IdentityStore
	logger  *slog.Logger
}

// NewResolver creates a new merge resolver
func NewResolver(storage storage.IdentityStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		storage: storage,
		logger:  logger,
	}
}

// BuildMergeMap computes the duplicate -> primary mapping in three
// passes, each pass only filling gaps left by the previous:
//  1. explicit MergedInto chains, followed to a fixed point
//  2. identities sharing a linked user account, preferring the one
//     with type "user" as primary
//  3. unlinked guests whose normalized name matches a user identity's name
func (r *Resolver) BuildMergeMap(ctx context.Context) (MergeMap, error) {
	identities, err := r.storage.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[model.IdentityID]*model.PlayerIdentity, len(identities))
	for _, identity := range identities {
		byID[identity.ID] = identity
	}

	mergeMap := make(MergeMap)

	// Pass 1: explicit merge chains
	for _, identity := range identities {
		if !identity.IsMerged() {
			continue
		}
		if primary, ok := r.followMergeChain(identity, byID); ok {
			mergeMap[identity.ID] = primary
		}
	}

	// Pass 2: identities sharing a linked user account
	byUser := make(map[string][]*model.PlayerIdentity)
	for _, identity := range identities {
		if identity.UserID == "" || identity.Deleted {
			continue
		}
		if _, mapped := mergeMap[identity.ID]; mapped {
			continue
		}
		byUser[identity.UserID] = append(byUser[identity.UserID], identity)
	}
	for _, group := range byUser {
		if len(group) < 2 {
			continue
		}
		primary := group[0]
		for _, identity := range group {
			if identity.Type == model.IdentityTypeUser {
				primary = identity
				break
			}
		}
		for _, identity := range group {
			if identity.ID != primary.ID {
				mergeMap[identity.ID] = primary.ID
			}
		}
	}

	// Pass 3: unlinked guests matching a user identity's name
	usersByName := make(map[string]model.IdentityID)
	for _, identity := range identities {
		if identity.Type != model.IdentityTypeUser || identity.Deleted {
			continue
		}
		if _, taken := usersByName[identity.NormalizedName]; !taken {
			usersByName[identity.NormalizedName] = identity.ID
		}
	}
	for _, identity := range identities {
		if identity.Type != model.IdentityTypeGuest || identity.UserID != "" || identity.Deleted {
			continue
		}
		if _, mapped := mergeMap[identity.ID]; mapped {
			continue
		}
		if userID, ok := usersByName[identity.NormalizedName]; ok && userID != identity.ID {
			mergeMap[identity.ID] = userID
		}
	}

	r.logger.Debug("merge map built",
		slog.Int("identities", len(identities)),
		slog.Int("merged", len(mergeMap)),
	)

	return mergeMap, nil
}

// followMergeChain walks MergedInto references to the chain's end.
// Returns false for broken chains (target missing) so the identity
// stays primary rather than pointing into nothing.
func (r *Resolver) followMergeChain(identity *model.PlayerIdentity, byID map[model.IdentityID]*model.PlayerIdentity) (model.IdentityID, bool) {
	visited := map[model.IdentityID]bool{identity.ID: true}
	current := identity

	for current.IsMerged() {
		next, ok := byID[current.MergedInto]
		if !ok {
			r.logger.Warn("merge chain target missing",
				slog.String("identity_id", string(current.ID)),
				slog.String("merged_into", string(current.MergedInto)),
			)
			return "", false
		}
		if visited[next.ID] {
			// Cycle: stop at the last identity before the repeat
			break
		}
		visited[next.ID] = true
		current = next
	}

	if current.ID == identity.ID {
		return "", false
	}
	return current.ID, true
}
