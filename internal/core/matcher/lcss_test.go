package matcher

import (
	"testing"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/platform/logger"
)

func TestLongestIncreasing(t *testing.T) {
	cases := []struct {
		in   []int
		want int
	}{
		{nil, 0},
		{[]int{5}, 1},
		{[]int{1, 2, 3}, 3},
		{[]int{3, 2, 1}, 1},
		{[]int{2, 5, 3, 7, 11, 8, 10}, 5},
		{[]int{4, 4, 4}, 1},
	}
	for _, tc := range cases {
		got := longestIncreasing(tc.in)
		if len(got) != tc.want {
			t.Fatalf("lis(%v) length = %d, want %d", tc.in, len(got), tc.want)
		}
		for i := 1; i < len(got); i++ {
			if got[i] <= got[i-1] {
				t.Fatalf("lis(%v) = %v not strictly increasing", tc.in, got)
			}
		}
	}
}

func TestLCSS_GappedWordsMatch(t *testing.T) {
	c := sealCatalog(t, "alpha beta gamma delta\tL1\tlcss")
	ctx := NewContext(c)

	// three of four words present, in order, with interlopers: no exact
	// match but an LCSS match
	got := Match(c, "alpha then beta and gamma", Flags{Matching: true, LCSS: true}, ctx)
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(got), got)
	}
	if !got[0].LCSS {
		t.Fatalf("expected LCSS-origin match")
	}
	if got[0].Matched != "alpha then beta and gamma" {
		t.Fatalf("matched = %q", got[0].Matched)
	}
}

func TestLCSS_TwoWordsInsufficient(t *testing.T) {
	c := sealCatalog(t, "alpha beta gamma delta\tL1\tlcss")
	ctx := NewContext(c)

	got := Match(c, "alpha then gamma", Flags{LCSS: true}, ctx)
	if len(got) != 0 {
		t.Fatalf("two observed words should not LCSS-match: %+v", got)
	}
}

func TestLCSS_OrderRequired(t *testing.T) {
	c := sealCatalog(t, "alpha beta gamma delta\tL1\tlcss")
	ctx := NewContext(c)

	// words present but out of order: the increasing run is too short
	got := Match(c, "gamma then beta then alpha", Flags{LCSS: true}, ctx)
	if len(got) != 0 {
		t.Fatalf("out-of-order words should not LCSS-match: %+v", got)
	}
}

func TestLCSS_MustHaveEnforced(t *testing.T) {
	c := sealCatalog(t, "alpha beta *gamma delta\tL1\tlcss")
	ctx := NewContext(c)

	// gamma (must-have, position 3) absent: suppressed even though three
	// words appear in order
	got := Match(c, "alpha then beta then delta", Flags{LCSS: true}, ctx)
	if len(got) != 0 {
		t.Fatalf("missing must-have should suppress LCSS: %+v", got)
	}

	// with gamma present the match fires
	got = Match(c, "alpha then beta then gamma", Flags{LCSS: true}, ctx)
	if len(got) != 1 || !got[0].LCSS {
		t.Fatalf("expected LCSS match with must-have present: %+v", got)
	}
}

func TestLCSS_ExactMatchNotDuplicated(t *testing.T) {
	c := sealCatalog(t, "alpha beta gamma\tL1\tlcss")
	ctx := NewContext(c)

	got := Match(c, "alpha beta gamma", Flags{LCSS: true}, ctx)
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1 (no LCSS duplicate): %+v", len(got), got)
	}
	if got[0].LCSS {
		t.Fatalf("exact completion reported as LCSS")
	}
}

func TestLCSS_ExactModeUnaffected(t *testing.T) {
	b := catalog.NewBuilder(catalog.Options{}, logger.Named("lcss_test"))
	b.AddRecord("alpha beta gamma delta\tL1\tlcss")
	b.AddRecord("cnn com\tN1\tnews")
	c := b.Seal()
	ctx := NewContext(c)

	got := Match(c, "cnn.com and alpha then beta plus gamma", Flags{LCSS: true}, ctx)
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2: %+v", len(got), got)
	}
	if got[0].LCSS || got[0].PatternID != 2 {
		t.Fatalf("first match should be the exact cnn com hit: %+v", got[0])
	}
	if !got[1].LCSS || got[1].PatternID != 1 {
		t.Fatalf("second match should be the LCSS hit: %+v", got[1])
	}
}
