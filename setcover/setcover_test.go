package setcover

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestApproxFullCover(t *testing.T) {
	sets := map[int][]int64{
		0: {1, 2, 3}, // A
		1: {3, 4, 5}, // B
		2: {5, 6, 7}, // C
		3: {1, 7},    // D
	}
	cover, err := Approx(sets, nil, 1.0)
	require.NoError(t, err)
	expect.EQ(t, cover, []int{0, 1, 2})
}

func TestApproxPartialCover(t *testing.T) {
	sets := map[int][]int64{
		0: {1, 2, 3},
		1: {3, 4, 5},
		2: {5, 6, 7},
		3: {1, 7},
	}
	// Half of the 7-element universe may stay uncovered: 4 elements suffice.
	cover, err := Approx(sets, nil, 0.5)
	require.NoError(t, err)
	covered := make(map[int64]bool)
	for _, id := range cover {
		for _, v := range sets[id] {
			covered[v] = true
		}
	}
	expect.True(t, len(covered) >= 4, "cover %v covers only %d elements", cover, len(covered))
	// No single set covers 4 elements, so exactly two are needed.
	expect.EQ(t, len(cover), 2)
}

func TestApproxSingleSetSuffices(t *testing.T) {
	sets := map[int][]int64{
		0: {1, 2, 3, 4},
		1: {5, 6},
	}
	cover, err := Approx(sets, nil, 0.5)
	require.NoError(t, err)
	expect.EQ(t, cover, []int{0})
}

func TestApproxWeighted(t *testing.T) {
	// Set 0 covers everything but is pricier per element than 1+2 combined
	// coverage at each greedy step.
	sets := map[int][]int64{
		0: {1, 2, 3, 4},
		1: {1, 2, 3},
		2: {4},
	}
	costs := map[int]float64{0: 8, 1: 1, 2: 1}
	cover, err := Approx(sets, costs, 1.0)
	require.NoError(t, err)
	expect.EQ(t, cover, []int{1, 2})
}

func TestApproxFloorOfNearInteger(t *testing.T) {
	// |U| = 5 and p = 0.8: floor(5 - 4.0) = 1 element may be uncovered.
	// Computing floor((1-0.8)*5) instead can yield 0 and force a full cover.
	sets := map[int][]int64{
		0: {1, 2, 3, 4},
		1: {5},
	}
	cover, err := Approx(sets, nil, 0.8)
	require.NoError(t, err)
	expect.EQ(t, cover, []int{0})
}

func TestApproxValidation(t *testing.T) {
	sets := map[int][]int64{0: {1}}
	_, err := Approx(sets, nil, -0.1)
	require.Error(t, err)
	_, err = Approx(sets, nil, 1.5)
	require.Error(t, err)
	_, err = Approx(sets, map[int]float64{0: -1}, 1.0)
	require.Error(t, err)
	// Missing cost entry.
	_, err = Approx(map[int][]int64{0: {1}, 1: {2}}, map[int]float64{0: 1}, 1.0)
	require.Error(t, err)
}

func TestApproxEmptyUniverse(t *testing.T) {
	cover, err := Approx(map[int][]int64{}, nil, 1.0)
	require.NoError(t, err)
	expect.EQ(t, len(cover), 0)
}

func TestApproxDeterministic(t *testing.T) {
	sets := map[int][]int64{
		0: {1, 2}, 1: {2, 3}, 2: {3, 4}, 3: {4, 1}, 4: {1, 3},
	}
	want, err := Approx(sets, nil, 1.0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := Approx(sets, nil, 1.0)
		require.NoError(t, err)
		expect.EQ(t, got, want)
	}
}
