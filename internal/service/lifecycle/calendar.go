package lifecycle

import "time"

// Session is the market's daily trading window in a local timezone.
// Weekends are always non-trading days; exchange holidays are not
// modeled, so a holiday looks like a normal trading day to the TTL.
type Session struct {
	Loc       *time.Location
	OpenHour  int
	OpenMin   int
	CloseHour int
	CloseMin  int
}

// DefaultSession is the Taiwan exchange window, 09:00-13:30 local.
func DefaultSession() Session {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return Session{Loc: loc, OpenHour: 9, CloseHour: 13, CloseMin: 30}
}

// Contains reports whether now falls inside the trading session.
func (s Session) Contains(now time.Time) bool {
	local := now.In(s.Loc)
	if isWeekend(local) {
		return false
	}
	open := s.openAt(local)
	close := time.Date(local.Year(), local.Month(), local.Day(), s.CloseHour, s.CloseMin, 0, 0, s.Loc)
	return !local.Before(open) && local.Before(close)
}

// NextOpen returns the next session open strictly after now's position:
// same day when the open is still ahead, otherwise the next business day.
func (s Session) NextOpen(now time.Time) time.Time {
	local := now.In(s.Loc)
	day := local
	if !local.Before(s.openAt(local)) {
		day = day.AddDate(0, 0, 1)
	}
	for isWeekend(day) {
		day = day.AddDate(0, 0, 1)
	}
	return s.openAt(day)
}

// EndOfDay returns local midnight following now.
func (s Session) EndOfDay(now time.Time) time.Time {
	local := now.In(s.Loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Loc).AddDate(0, 0, 1)
}

func (s Session) openAt(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.OpenHour, s.OpenMin, 0, 0, s.Loc)
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
