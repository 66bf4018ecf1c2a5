package ledger

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Score is the number of started days between start and now, never negative.
func Score(start *time.Time, now time.Time) int {
	if start == nil {
		return 0
	}
	diff := now.Sub(*start)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(float64(diff) / float64(day)))
	if days < 0 {
		return 0
	}
	return days
}

// Score returns the tenure score of this profile.
func (l *Ledger) Score() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Score(l.st.StartDate, l.now())
}

// StartDate returns the tenure start date, if one has been set.
func (l *Ledger) StartDate() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st.StartDate == nil {
		return time.Time{}, false
	}
	return *l.st.StartDate, true
}
