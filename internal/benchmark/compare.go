package benchmark

import "fmt"

type Comparison struct {
	Name        string
	SecondsDiff float64 // Percentage change
	Prev        Result
	Curr        Result
}

// Compare runs comparison between two results.
// It returns a list of comparisons for benchmarks present in both runs.
func Compare(prev, curr Run) []Comparison {
	prevMap := make(map[string]Result)
	for _, r := range prev.Results {
		prevMap[r.Name] = r
	}

	var comparisons []Comparison
	for _, c := range curr.Results {
		if p, ok := prevMap[c.Name]; ok {
			comp := Comparison{
				Name: c.Name,
				Prev: p,
				Curr: c,
			}
			if p.Seconds > 0 {
				comp.SecondsDiff = (c.Seconds - p.Seconds) / p.Seconds * 100
			}
			comparisons = append(comparisons, comp)
		}
	}
	return comparisons
}

// Regressions returns the comparisons that got slower by more than threshold percent.
func Regressions(comparisons []Comparison, threshold float64) []Comparison {
	var out []Comparison
	for _, c := range comparisons {
		if c.SecondsDiff > threshold {
			out = append(out, c)
		}
	}
	return out
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %+.2f%% s/op", c.Name, c.SecondsDiff)
}
