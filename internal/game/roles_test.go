package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffledPool_ExactMultiset(t *testing.T) {
	counts := map[Role]int{
		RoleMafia:    2,
		RoleVillager: 4,
		RoleDoctor:   1,
		RoleGod:      1,
	}

	pool, err := ShuffledPool(counts, 8)
	require.NoError(t, err)
	require.Len(t, pool, 8)

	got := map[Role]int{}
	for _, r := range pool {
		got[r]++
	}
	assert.Equal(t, counts, got)
}

func TestShuffledPool_CountMismatch(t *testing.T) {
	cases := []struct {
		name        string
		counts      map[Role]int
		playerCount int
	}{
		{"too few roles", map[Role]int{RoleMafia: 1, RoleVillager: 1}, 3},
		{"too many roles", map[Role]int{RoleMafia: 2, RoleVillager: 2}, 3},
		{"empty pool", map[Role]int{}, 1},
		{"negative count", map[Role]int{RoleMafia: -1, RoleVillager: 4}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ShuffledPool(tc.counts, tc.playerCount)
			assert.ErrorIs(t, err, ErrRoleCountMismatch)
		})
	}
}

func TestShuffledPool_ZeroPlayers(t *testing.T) {
	pool, err := ShuffledPool(map[Role]int{}, 0)
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestShuffledPool_Shuffles(t *testing.T) {
	// With 20 entries across repeated draws, at least one draw should
	// differ from the sorted build order unless the shuffle is broken.
	counts := map[Role]int{RoleMafia: 10, RoleVillager: 10}

	varied := false
	for i := 0; i < 20 && !varied; i++ {
		pool, err := ShuffledPool(counts, 20)
		require.NoError(t, err)
		for j := 0; j < 10; j++ {
			if pool[j] != RoleMafia {
				varied = true
				break
			}
		}
	}
	assert.True(t, varied, "shuffle never deviated from build order")
}
