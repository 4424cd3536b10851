package analysis

import "time"

const dateKeyLayout = "2006-01-02"

// DateKey returns the calendar-date bucket for an activity start time
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// AggregateDaily buckets estimated stresses by calendar day. Multiple
// activities on the same date sum their TSS. Input is expected sorted
// ascending by start date; this function does not re-sort.
func AggregateDaily(activities []ActivityWithLoad) map[string]float64 {
	daily := make(map[string]float64, len(activities))
	for _, a := range activities {
		daily[DateKey(a.StartDate)] += a.Load.TSS
	}
	return daily
}

// TrainingLoadState is the running chronic/acute load and balance as of
// the evaluation date.
type TrainingLoadState struct {
	CTL float64 `json:"ctl"`
	ATL float64 `json:"atl"`
	TSB float64 `json:"tsb"`
}

// Integrate walks the daily series from start through end inclusive and
// applies the Banister impulse-response recurrences:
//
//	ctl = ctl*(n-1)/n + tss/n   (n = CTL time constant, 42 days)
//	atl = atl*(m-1)/m + tss/m   (m = ATL time constant, 7 days)
//
// Days without an entry contribute zero load but still decay the averages.
// The result depends only on the daily series and the window bounds, so
// identical inputs integrate to bit-identical output.
func Integrate(daily map[string]float64, start, end time.Time, p Params) TrainingLoadState {
	if start.IsZero() {
		return TrainingLoadState{}
	}

	startDay := truncateToDay(start)
	endDay := truncateToDay(end)
	if endDay.Before(startDay) {
		return TrainingLoadState{}
	}

	n := float64(p.CTLDays)
	m := float64(p.ATLDays)

	var ctl, atl float64
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		tss := daily[DateKey(d)]
		ctl = ctl*(n-1)/n + tss/n
		atl = atl*(m-1)/m + tss/m
	}

	return TrainingLoadState{CTL: ctl, ATL: atl, TSB: ctl - atl}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
