package harness

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/tools/cover"
)

// LineCoverage loads a Go cover profile and returns the aggregate
// percentage of profiled lines with at least one execution, rounded to
// the nearest integer. A profile with a mode line but no blocks yields
// a valid 0. A zero-length file means the instrumented run never wrote
// the profile (the suite failed before instrumentation ran) and is
// reported as a load failure.
func LineCoverage(profilePath string) (int, error) {
	info, err := os.Stat(profilePath)
	if err != nil {
		return 0, fmt.Errorf("loading cover profile: %w", err)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("cover profile %s is empty: no profile was written", profilePath)
	}

	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return 0, fmt.Errorf("loading cover profile: %w", err)
	}

	covered, total := 0, 0
	for _, p := range profiles {
		hits := make(map[int]bool)
		for _, b := range p.Blocks {
			for line := b.StartLine; line <= b.EndLine; line++ {
				hits[line] = hits[line] || b.Count > 0
			}
		}
		for _, hit := range hits {
			total++
			if hit {
				covered++
			}
		}
	}

	if total == 0 {
		return 0, nil
	}
	return int(math.Round(float64(covered) * 100 / float64(total))), nil
}
