// Package league aggregates per-gear usage statistics from the activity
// store and renders ranked league tables for shoes and bikes.
package league

import (
	"sort"
	"time"

	"github.com/mhewitt/strider/internal/strava"
)

// Stats accumulates usage figures for one piece of gear. Distances and
// elevation are meters, times are seconds; unit conversion happens only at
// render time.
type Stats struct {
	GearID         string
	Name           string
	Retired        bool
	Activities     int
	TotalDistance  float64
	TotalElevation float64
	TotalTime      int64
	Longest        float64
	FirstUse       time.Time // zero when no activity carried a parseable timestamp

	// Derived after the aggregation pass.
	AvgLength float64 // meters per activity
	AvgPace   float64 // minutes per kilometer, shoes
	AvgSpeed  float64 // kilometers per hour, bikes
}

// Shoes computes ranked statistics for every shoe in gears, joined against
// the activity collection. Shoe time is wall-clock time on feet, so elapsed
// time feeds the totals and the pace.
func Shoes(gears []strava.Gear, acts []strava.Activity) []Stats {
	return aggregate(gears, acts, strava.Gear.IsShoe, func(a strava.Activity) int64 {
		return a.ElapsedTime
	})
}

// Bikes computes ranked statistics for every bike in gears, plus a TOTAL row
// summing all bikes with its averages recomputed from the sums. Bike time is
// moving time, so cafe stops don't drag the average speed down.
func Bikes(gears []strava.Gear, acts []strava.Activity) ([]Stats, Stats) {
	ranked := aggregate(gears, acts, strava.Gear.IsBike, func(a strava.Activity) int64 {
		return a.MovingTime
	})

	total := Stats{GearID: "TOTAL", Name: "TOTAL"}
	for _, s := range ranked {
		total.Activities += s.Activities
		total.TotalDistance += s.TotalDistance
		total.TotalElevation += s.TotalElevation
		total.TotalTime += s.TotalTime
		if s.Longest > total.Longest {
			total.Longest = s.Longest
		}
	}
	total.finalize()
	return ranked, total
}

// aggregate filters gears by class, makes a single pass over all activities
// and ranks the accumulators by average activity length descending. Ties keep
// the order of first appearance in the gear list. activityTime picks which
// duration field a class accumulates.
func aggregate(gears []strava.Gear, acts []strava.Activity, class func(strava.Gear) bool, activityTime func(strava.Activity) int64) []Stats {
	index := make(map[string]*Stats)
	ordered := make([]*Stats, 0, len(gears))
	for _, g := range gears {
		if !class(g) {
			continue
		}
		if _, ok := index[g.ID]; ok {
			continue
		}
		s := &Stats{GearID: g.ID, Name: g.Name, Retired: g.Retired}
		if s.Name == "" {
			s.Name = "Unknown"
		}
		index[g.ID] = s
		ordered = append(ordered, s)
	}

	for _, a := range acts {
		s, ok := index[a.GearID]
		if !ok {
			continue
		}
		s.Activities++
		s.TotalDistance += a.Distance
		s.TotalElevation += a.TotalElevationGain
		s.TotalTime += activityTime(a)
		if a.Distance > s.Longest {
			s.Longest = a.Distance
		}
		// Unparseable timestamps keep the activity in the totals but
		// leave first-use alone.
		if t, err := a.StartTime(); err == nil {
			if s.FirstUse.IsZero() || t.Before(s.FirstUse) {
				s.FirstUse = t
			}
		}
	}

	for _, s := range ordered {
		s.finalize()
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AvgLength > ordered[j].AvgLength
	})

	ranked := make([]Stats, len(ordered))
	for i, s := range ordered {
		ranked[i] = *s
	}
	return ranked
}

// finalize computes the derived averages from the accumulated sums.
func (s *Stats) finalize() {
	if s.Activities > 0 {
		s.AvgLength = s.TotalDistance / float64(s.Activities)
	}
	if s.TotalDistance > 0 {
		s.AvgPace = (float64(s.TotalTime) / 60) / (s.TotalDistance / 1000)
	}
	if s.TotalTime > 0 {
		s.AvgSpeed = (s.TotalDistance / 1000) / (float64(s.TotalTime) / 3600)
	}
}
