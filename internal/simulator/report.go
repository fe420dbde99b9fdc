package simulator

import (
	"time"

	"github.com/lox/pokertable/poker"
)

// Report summarizes a simulation run.
type Report struct {
	Seed     int64
	Strategy string
	Tables   int
	Rounds   int
	Actions  int
	// Rebuys counts tables that ran out of players with chips and were
	// reseated with fresh stacks.
	Rebuys    int
	Showdowns int
	FoldOuts  int
	// SidePots counts rounds settled into more than one pot.
	SidePots  int
	SplitPots int
	TotalPot  int
	MaxPot    int
	// Winning counts the category of the best hand at each showdown.
	Winning  map[poker.Category]int
	Duration time.Duration
}

func newReport() *Report {
	return &Report{Winning: make(map[poker.Category]int)}
}

// AveragePot is the mean pot size per round.
func (r *Report) AveragePot() float64 {
	if r.Rounds == 0 {
		return 0
	}
	return float64(r.TotalPot) / float64(r.Rounds)
}

// ShowdownRate is the share of rounds that reached a showdown.
func (r *Report) ShowdownRate() float64 {
	if r.Rounds == 0 {
		return 0
	}
	return float64(r.Showdowns) / float64(r.Rounds)
}

// Merge adds other's counts to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Tables += other.Tables
	r.Rounds += other.Rounds
	r.Actions += other.Actions
	r.Rebuys += other.Rebuys
	r.Showdowns += other.Showdowns
	r.FoldOuts += other.FoldOuts
	r.SidePots += other.SidePots
	r.SplitPots += other.SplitPots
	r.TotalPot += other.TotalPot
	r.MaxPot = max(r.MaxPot, other.MaxPot)
	for c, n := range other.Winning {
		r.Winning[c] += n
	}
}
