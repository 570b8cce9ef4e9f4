package probe

import (
	"testing"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/testutil/expect"
)

func TestCoverExactMatch(t *testing.T) {
	fn := CoverByLongestCommonSubstring(0, 6)
	start, end, ok := fn("ACGTAC", "ACGTAC")
	expect.True(t, ok)
	expect.EQ(t, start, 0)
	expect.EQ(t, end, 6)
}

func TestCoverMismatchBudget(t *testing.T) {
	// One mismatch in the middle splits the window under a 0-mismatch
	// budget but is absorbed under a 1-mismatch budget.
	window, pw := "ACGTACGTAC", "ACGTTCGTAC"
	_, _, ok := CoverByLongestCommonSubstring(0, 8)(window, pw)
	expect.False(t, ok)

	start, end, ok := CoverByLongestCommonSubstring(1, 8)(window, pw)
	expect.True(t, ok)
	expect.EQ(t, start, 0)
	expect.EQ(t, end, 10)
}

func TestCoverBelowThreshold(t *testing.T) {
	_, _, ok := CoverByLongestCommonSubstring(0, 6)("ACGTA", "ACGTA")
	expect.False(t, ok)
}

func TestCoverReportsMaximalStretch(t *testing.T) {
	// Mismatches at both ends; the interior stretch is the cover.
	window := "TACGTACGTT"
	pw := "AACGTACGTA"
	start, end, ok := CoverByLongestCommonSubstring(0, 5)(window, pw)
	expect.True(t, ok)
	expect.EQ(t, start, 1)
	expect.EQ(t, end, 9)
}

func TestCoverLeftmostOnTie(t *testing.T) {
	// Two equal-length clean stretches around a middle mismatch.
	window := "AAAATAAAA"
	pw := "AAAACAAAA"
	start, end, ok := CoverByLongestCommonSubstring(0, 4)(window, pw)
	expect.True(t, ok)
	expect.EQ(t, start, 0)
	expect.EQ(t, end, 4)
}

func TestCoverAgainstHammingDistance(t *testing.T) {
	// When the whole window is reported covered, the window's Hamming
	// distance to the probe bases must be within the mismatch budget.
	// matchr supplies the independent distance computation.
	cases := []struct{ window, pw string }{
		{"ACGTACGTAC", "ACGTACGTAC"},
		{"ACGTACGTAC", "ACGTACGTAT"},
		{"ACGTACGTAC", "TCGTACGTAT"},
	}
	for _, c := range cases {
		for mm := 0; mm <= 3; mm++ {
			start, end, ok := CoverByLongestCommonSubstring(mm, len(c.window))(c.window, c.pw)
			d, err := matchr.Hamming(c.window, c.pw)
			expect.NoError(t, err)
			if ok && end-start == len(c.window) {
				expect.True(t, d <= mm, "window %q/%q mm=%d dist=%d", c.window, c.pw, mm, d)
			}
			if d <= mm {
				expect.True(t, ok && start == 0 && end == len(c.window),
					"window %q/%q mm=%d dist=%d not fully covered", c.window, c.pw, mm, d)
			}
		}
	}
}
