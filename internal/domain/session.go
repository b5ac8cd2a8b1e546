package domain

// SessionKey addresses one conversation. No two events for the same key
// are processed concurrently.
type SessionKey struct {
	UserID int64 `json:"user_id"`
	ChatID int64 `json:"chat_id"`
}

// Session is the explicit tagged state of one in-progress dialogue:
// which flow, which step, and the criteria gathered so far.
type Session struct {
	Key      SessionKey     `json:"key"`
	Step     Step           `json:"step"`
	Criteria SearchCriteria `json:"criteria"`

	// Range holds the two-phase date selection while the calendar
	// steps are active.
	Range DateRange `json:"range"`
}

// DateRange is the two-phase check-in/check-out selection. A stay is
// only committed once both phases are; the check-out picker is bounded
// below by check-in + 1 day so an inverted range is unreachable.
type DateRange struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

func (r DateRange) CheckInDone() bool { return !r.CheckIn.IsZero() }

func (r DateRange) Complete() bool { return !r.CheckIn.IsZero() && !r.CheckOut.IsZero() }
