// Package wellness turns a student's daily mood check-ins into a trend report
// and decides whether the student should be nudged towards support.
package wellness

import (
	"sort"
	"time"
)

const (
	// WindowDays is the trailing window, in calendar days, considered by Analyze.
	WindowDays = 30
	// SegmentSize is the number of entries in the recent and prior segments.
	SegmentSize = 7
	// MinEntries is the number of entries Analyze needs inside the window.
	MinEntries = 7
	// LowMoodScore is the highest score still counted as a low mood day.
	LowMoodScore = 2
	// TrendMargin is how far the recent average must move from the baseline
	// before the trend is no longer stable.
	TrendMargin = 0.5

	// MinScore and MaxScore bound the check-in mood scale. Entries outside it
	// are ignored by Analyze and Summarize.
	MinScore = 0
	MaxScore = 5
)

// Alert messages surfaced to the student.
const (
	ReachOutMessage = "We've noticed your mood has been declining. Consider reaching out to a peer supporter."
	SupportMessage  = "You've had several low mood days. Would you like to connect with support?"
)

// Trend classifies the direction of a student's mood.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	// TrendNeutral is only produced by Summarize when there is too little data.
	TrendNeutral Trend = "neutral"
)

// AlertLevel identifies which alert rule fired.
type AlertLevel string

const (
	AlertNone     AlertLevel = ""
	AlertReachOut AlertLevel = "reach_out"
	AlertSupport  AlertLevel = "support"
)

// MoodEntry is one daily check-in.
type MoodEntry struct {
	Date  time.Time
	Score int
}

// TrendReport is derived on demand and never stored.
type TrendReport struct {
	AsOf            time.Time
	Entries         int
	Average30d      float64
	AverageRecent7d float64
	// AveragePrior7d holds Average30d when PriorFallback is set.
	AveragePrior7d float64
	PriorFallback  bool
	Trend          Trend
	LowMoodDays    int
	Alert          bool
	Level          AlertLevel
	Message        string
}

// Analyze reports on the entries dated within the WindowDays calendar days
// ending at asOf. It returns false when fewer than MinEntries entries fall
// inside the window.
func Analyze(history []MoodEntry, asOf time.Time) (TrendReport, bool) {
	entries := window(history, asOf, WindowDays)
	if len(entries) < MinEntries {
		return TrendReport{AsOf: Day(asOf), Entries: len(entries)}, false
	}

	report := TrendReport{
		AsOf:       Day(asOf),
		Entries:    len(entries),
		Average30d: average(entries),
	}

	recentStart := len(entries) - SegmentSize
	recent := entries[recentStart:]
	report.AverageRecent7d = average(recent)

	priorStart := recentStart - SegmentSize
	if priorStart >= 0 {
		report.AveragePrior7d = average(entries[priorStart:recentStart])
	} else {
		report.AveragePrior7d = report.Average30d
		report.PriorFallback = true
	}

	switch {
	case report.AverageRecent7d < report.AveragePrior7d-TrendMargin:
		report.Trend = TrendDeclining
	case report.AverageRecent7d > report.AveragePrior7d+TrendMargin:
		report.Trend = TrendImproving
	default:
		report.Trend = TrendStable
	}

	for _, entry := range recent {
		if entry.Score <= LowMoodScore {
			report.LowMoodDays++
		}
	}

	switch {
	case report.Trend == TrendDeclining && report.LowMoodDays >= 3:
		report.Alert = true
		report.Level = AlertReachOut
		report.Message = ReachOutMessage
	case report.LowMoodDays >= 4:
		report.Alert = true
		report.Level = AlertSupport
		report.Message = SupportMessage
	}

	return report, true
}

// WeeklyStats is the short summary shown on the wellness page.
type WeeklyStats struct {
	AverageMood   float64
	Trend         Trend
	Streak        int
	TotalCheckins int
}

// Summarize covers the seven calendar days ending at asOf. The trend compares
// the last three entries with the earlier ones and is neutral below four
// entries. Streak counts consecutive check-in days ending at asOf.
func Summarize(history []MoodEntry, asOf time.Time) WeeklyStats {
	entries := window(history, asOf, SegmentSize)
	stats := WeeklyStats{Trend: TrendNeutral, TotalCheckins: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	stats.AverageMood = average(entries)

	if len(entries) >= 4 {
		split := len(entries) - 3
		older := average(entries[:split])
		recent := average(entries[split:])
		switch {
		case recent > older:
			stats.Trend = TrendImproving
		case recent < older:
			stats.Trend = TrendDeclining
		default:
			stats.Trend = TrendStable
		}
	}

	days := make(map[time.Time]struct{}, len(entries))
	for _, entry := range entries {
		days[entry.Date] = struct{}{}
	}
	for day := Day(asOf); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day]; !ok {
			break
		}
		stats.Streak++
	}

	return stats
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// window keeps the on-scale entries dated within the given number of calendar
// days ending at asOf, one per day with the last one winning, in ascending order.
func window(history []MoodEntry, asOf time.Time, days int) []MoodEntry {
	end := Day(asOf)
	start := end.AddDate(0, 0, -(days - 1))

	byDay := make(map[time.Time]MoodEntry, len(history))
	for _, entry := range history {
		day := Day(entry.Date.In(asOf.Location()))
		if day.Before(start) || day.After(end) {
			continue
		}
		if entry.Score < MinScore || entry.Score > MaxScore {
			continue
		}
		byDay[day] = MoodEntry{Date: day, Score: entry.Score}
	}

	out := make([]MoodEntry, 0, len(byDay))
	for _, entry := range byDay {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func average(entries []MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var total int
	for _, entry := range entries {
		total += entry.Score
	}
	return float64(total) / float64(len(entries))
}
