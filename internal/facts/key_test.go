package facts

import "testing"

func TestMakeKeyEquality(t *testing.T) {
	loc := Location{File: "a.h", Line: 10}

	if makeKey(loc, "n", "out") != makeKey(Location{File: "a.h", Line: 10}, "n", "out") {
		t.Error("structurally equal inputs produced different keys")
	}

	distinct := []string{
		makeKey(loc, "n", "out"),
		makeKey(loc, "n", "other"),
		makeKey(loc, "m", "out"),
		makeKey(Location{File: "a.h", Line: 11}, "n", "out"),
		makeKey(loc, "n", "out", "alias"),
		makeKey(loc, "n", "out", ""),
	}
	seen := make(map[string]int)
	for i, k := range distinct {
		if j, ok := seen[k]; ok {
			t.Errorf("keys %d and %d collide: %q", i, j, k)
		}
		seen[k] = i
	}
}
