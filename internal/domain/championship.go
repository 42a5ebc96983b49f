package domain

import "time"

// Reign summarizes one title reign for read models. LostAt is nil while the
// reign is still running.
type Reign struct {
	Champion EntityRef
	WonAt    time.Time
	LostAt   *time.Time
}

// ReignOf converts a championship period into a reign. The period's
// counterpart is the champion; a period without one yields a zero champion
// reference, which indicates corrupt data upstream.
func ReignOf(p Period) Reign {
	r := Reign{WonAt: p.StartedAt, LostAt: p.EndedAt}
	if p.Counterpart != nil {
		r.Champion = *p.Counterpart
	}
	return r
}

// Length returns how long the reign has run, using now as the end of an
// open reign.
func (r Reign) Length(now time.Time) time.Duration {
	end := now
	if r.LostAt != nil {
		end = *r.LostAt
	}
	return end.Sub(r.WonAt)
}

// LongestReign returns the longest reign among the given championship
// periods, measuring open reigns up to now and breaking ties in favor of
// the earliest start. Returns nil when the title has never been held.
func LongestReign(reigns []Period, now time.Time) *Reign {
	var best *Reign
	for _, p := range reigns {
		r := ReignOf(p)
		if best == nil {
			best = &r
			continue
		}
		length, bestLength := r.Length(now), best.Length(now)
		if length > bestLength || (length == bestLength && r.WonAt.Before(best.WonAt)) {
			best = &r
		}
	}
	return best
}
