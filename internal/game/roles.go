package game

import (
	"errors"
	"math/rand"
	"sort"
	"time"
)

// Role is a player's secret game role. The lobby owner holds GOD from
// creation; everyone else starts unassigned.
type Role string

const (
	RoleGod       Role = "GOD"
	RoleMafia     Role = "MAFIA"
	RoleVillager  Role = "VILLAGER"
	RoleDoctor    Role = "DOCTOR"
	RoleDetective Role = "DETECTIVE"
)

var ErrRoleCountMismatch = errors.New("ROLE_COUNT_MISMATCH: role count must match player count")

// ShuffledPool builds a flat pool with each role repeated per its requested
// count and shuffles it uniformly. It fails when the pool size does not
// exactly equal playerCount.
//
// The source is reseeded per call so repeated assignments in the same lobby
// are not predictable from one another. Tokens need real unguessability and
// use uuid v4 instead; game fairness only needs an unreused seed.
func ShuffledPool(roleCounts map[Role]int, playerCount int) ([]Role, error) {
	total := 0
	for _, n := range roleCounts {
		if n < 0 {
			return nil, ErrRoleCountMismatch
		}
		total += n
	}
	if total != playerCount {
		return nil, ErrRoleCountMismatch
	}

	// Deterministic build order so the shuffle is the only randomness.
	names := make([]string, 0, len(roleCounts))
	for role := range roleCounts {
		names = append(names, string(role))
	}
	sort.Strings(names)

	pool := make([]Role, 0, total)
	for _, name := range names {
		for i := 0; i < roleCounts[Role(name)]; i++ {
			pool = append(pool, Role(name))
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool, nil
}
