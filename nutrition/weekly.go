package nutrition

import "time"

// WeekOrder lists weekdays Monday first.
var WeekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Baseline is the rest-day target.
type Baseline struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbG    int `json:"carb_g"`
	FatG     int `json:"fat_g"`
}

// DayContribution is one session's or activity's calories on a weekday.
type DayContribution struct {
	Day      time.Weekday
	Calories int
}

// DayTarget is one row of the weekly table.
type DayTarget struct {
	Day            string `json:"day"`
	Calories       int    `json:"calories"`
	AddendCalories int    `json:"addend_calories"`
	ProteinG       int    `json:"protein_g"`
	CarbG          int    `json:"carb_g"`
	FatG           int    `json:"fat_g"`
}

// WeeklyTarget is the Monday..Sunday target table.
type WeeklyTarget struct {
	Baseline            Baseline     `json:"baseline"`
	Days                [7]DayTarget `json:"days"`
	WeeklyTotalCalories int          `json:"weekly_total_calories"`
}

// AggregateByWeekday sums contributions per weekday. Negative contributions
// are ignored.
func AggregateByWeekday(contribs []DayContribution) map[time.Weekday]int {
	out := make(map[time.Weekday]int, 7)
	for _, c := range contribs {
		if c.Calories <= 0 {
			continue
		}
		out[c.Day] += c.Calories
	}
	return out
}

// DistributeWeekly adds each weekday's training/activity calories to the
// baseline. Macros stay at baseline every day; only calories move.
func DistributeWeekly(base Baseline, addends map[time.Weekday]int) WeeklyTarget {
	wt := WeeklyTarget{Baseline: base}
	for i, day := range WeekOrder {
		add := addends[day]
		wt.Days[i] = DayTarget{
			Day:            day.String(),
			Calories:       base.Calories + add,
			AddendCalories: add,
			ProteinG:       base.ProteinG,
			CarbG:          base.CarbG,
			FatG:           base.FatG,
		}
		wt.WeeklyTotalCalories += wt.Days[i].Calories
	}
	return wt
}
