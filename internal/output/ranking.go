package output

import (
	"fmt"
	"math"
	"sort"

	"github.com/tstromberg/cachebench/internal/benchmark"
)

// Points awarded by placement: 1st=10, 2nd=7, 3rd=5, 4th=4, 5th=3, 6th=2, 7th=1.
var placementPoints = []float64{10, 7, 5, 4, 3, 2, 1}

// Ranking represents an overall ranking entry.
type Ranking struct {
	Rank   int     `json:"rank"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Gold   int     `json:"gold"`
	Silver int     `json:"silver"`
	Bronze int     `json:"bronze"`
}

// BenchmarkMedal represents a single benchmark's top 3 placements.
// Tied entries share a placement.
type BenchmarkMedal struct {
	Name   string   `json:"name"`
	Gold   []string `json:"gold,omitempty"`
	Silver []string `json:"silver,omitempty"`
	Bronze []string `json:"bronze,omitempty"`
}

// CategoryMedals holds medals for one measurement mode.
type CategoryMedals struct {
	Name       string           `json:"name"`
	Benchmarks []BenchmarkMedal `json:"benchmarks"`
	Rankings   []Ranking        `json:"rankings"`
}

// MedalTable holds all benchmark medals organized by category.
type MedalTable struct {
	Categories []CategoryMedals `json:"categories"`
}

// rankedEntry holds a name and score for tie detection.
type rankedEntry struct {
	name  string
	score float64
}

// Round3 rounds to 3 decimal places for tie detection.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// WinnerEntry represents a ranked entry for winner display.
type WinnerEntry struct {
	Name  string
	Score float64
}

// FormatWinners returns winner names and the first runner-up for comparison.
// If multiple entries tie for first, all are returned as winners.
// Returns (winners, runnerUp) where runnerUp is nil if everyone ties or only one entry.
func FormatWinners(entries []WinnerEntry) (winners []string, runnerUp *WinnerEntry) {
	if len(entries) == 0 {
		return nil, nil
	}

	bestScore := Round3(entries[0].Score)
	for _, e := range entries {
		if Round3(e.Score) != bestScore {
			runnerUp = &WinnerEntry{Name: e.Name, Score: e.Score}
			break
		}
		winners = append(winners, e.Name)
	}

	return winners, runnerUp
}

// categoryName maps a mode to its medal table heading.
func categoryName(m benchmark.Mode) string {
	if m == benchmark.Throughput {
		return "Throughput"
	}
	return "Average Time"
}

// benchmarkName labels a group by operation and the workload knobs that differ from defaults.
func benchmarkName(r BenchmarkResult) string {
	d := benchmark.DefaultConfig()
	c := r.Config
	name := r.Op
	if c.ValueSize != d.ValueSize {
		name += fmt.Sprintf(" valueSize=%d", c.ValueSize)
	}
	if c.Capacity != d.Capacity {
		name += fmt.Sprintf(" capacity=%d", c.Capacity)
	}
	if c.SegmentCount != d.SegmentCount {
		name += fmt.Sprintf(" segmentCount=%d", c.SegmentCount)
	}
	if c.HashTableSize != d.HashTableSize {
		name += fmt.Sprintf(" hashTableSize=%d", c.HashTableSize)
	}
	if c.Keys != d.Keys {
		name += fmt.Sprintf(" keys=%d", c.Keys)
	}
	return name
}

// ComputeRankings ranks cache variants within every group of comparable
// results and totals placement points. Groups with a single variant award
// nothing, so a one-variant run has no rankings.
func ComputeRankings(results Results) ([]Ranking, *MedalTable) {
	scores := make(map[string]float64)
	medals := make(map[string][3]int) // [gold, silver, bronze]

	categoryMedals := make(map[string]map[string][3]int)
	categoryBenchmarks := make(map[string][]BenchmarkMedal)

	// assignPoints handles tie detection: entries with scores equal to 3 decimal
	// places share the same medal position. Entries must be pre-sorted by score.
	assignPoints := func(category, benchName string, entries []rankedEntry) {
		bm := BenchmarkMedal{Name: benchName}
		pos := 0 // current medal position (0=gold, 1=silver, 2=bronze)
		i := 0

		for i < len(entries) {
			var tied []string
			baseScore := Round3(entries[i].score)
			for i < len(entries) && Round3(entries[i].score) == baseScore {
				tied = append(tied, entries[i].name)
				i++
			}

			for _, n := range tied {
				if pos < len(placementPoints) {
					scores[n] += placementPoints[pos]
				}
				if pos < 3 {
					m := medals[n]
					m[pos]++
					medals[n] = m

					if categoryMedals[category] == nil {
						categoryMedals[category] = make(map[string][3]int)
					}
					cm := categoryMedals[category][n]
					cm[pos]++
					categoryMedals[category][n] = cm
				}
			}

			switch pos {
			case 0:
				bm.Gold = tied
			case 1:
				bm.Silver = tied
			case 2:
				bm.Bronze = tied
			}

			// Skip positions based on number of ties
			pos += len(tied)
		}

		categoryBenchmarks[category] = append(categoryBenchmarks[category], bm)
	}

	for _, g := range Group(results.Benchmarks) {
		if len(g) < 2 {
			continue
		}
		entries := make([]rankedEntry, len(g))
		for i, r := range g {
			entries[i] = rankedEntry{r.Config.Impl, r.Score.Mean}
		}
		assignPoints(categoryName(g[0].Mode), benchmarkName(g[0]), entries)
	}

	if len(scores) == 0 {
		return nil, nil
	}

	// Sort caches by score, then by medals as tiebreaker
	type cacheRank struct {
		name   string
		score  float64
		gold   int
		silver int
		bronze int
	}
	var ranks []cacheRank
	for name, score := range scores {
		m := medals[name]
		ranks = append(ranks, cacheRank{name, score, m[0], m[1], m[2]})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].score != ranks[j].score {
			return ranks[i].score > ranks[j].score
		}
		if ranks[i].gold != ranks[j].gold {
			return ranks[i].gold > ranks[j].gold
		}
		if ranks[i].silver != ranks[j].silver {
			return ranks[i].silver > ranks[j].silver
		}
		if ranks[i].bronze != ranks[j].bronze {
			return ranks[i].bronze > ranks[j].bronze
		}
		return ranks[i].name < ranks[j].name
	})

	result := make([]Ranking, 0, len(ranks))
	for i, r := range ranks {
		result = append(result, Ranking{
			Rank:   i + 1,
			Name:   r.name,
			Score:  r.score,
			Gold:   r.gold,
			Silver: r.silver,
			Bronze: r.bronze,
		})
	}

	catOrder := []string{categoryName(benchmark.Throughput), categoryName(benchmark.AverageTime)}
	var categories []CategoryMedals
	for _, cat := range catOrder {
		bm := categoryBenchmarks[cat]
		if len(bm) == 0 {
			continue
		}

		cm := categoryMedals[cat]
		catRanks := make([]cacheRank, 0, len(cm))
		for name, m := range cm {
			catRanks = append(catRanks, cacheRank{
				name:   name,
				gold:   m[0],
				silver: m[1],
				bronze: m[2],
			})
		}
		sort.Slice(catRanks, func(i, j int) bool {
			if catRanks[i].gold != catRanks[j].gold {
				return catRanks[i].gold > catRanks[j].gold
			}
			if catRanks[i].silver != catRanks[j].silver {
				return catRanks[i].silver > catRanks[j].silver
			}
			if catRanks[i].bronze != catRanks[j].bronze {
				return catRanks[i].bronze > catRanks[j].bronze
			}
			return catRanks[i].name < catRanks[j].name
		})

		out := make([]Ranking, len(catRanks))
		for i, r := range catRanks {
			out[i] = Ranking{
				Rank:   i + 1,
				Name:   r.name,
				Gold:   r.gold,
				Silver: r.silver,
				Bronze: r.bronze,
			}
		}

		categories = append(categories, CategoryMedals{
			Name:       cat,
			Benchmarks: bm,
			Rankings:   out,
		})
	}

	return result, &MedalTable{Categories: categories}
}
