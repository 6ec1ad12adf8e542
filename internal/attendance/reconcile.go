package attendance

// Status is the per-day attendance state of a student.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
	StatusExcused Status = "Excused"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Student is a roster member eligible for attendance.
type Student struct {
	ID        int64  `json:"id"`
	Code      string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ClassName string `json:"class_name,omitempty"`
	Section   string `json:"section,omitempty"`
}

// Record is one persisted attendance row. At most one exists per
// (student, date).
type Record struct {
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
	Remarks   string `json:"remarks,omitempty"`
}

// RosterEntry is a student joined with their attendance for the viewed date.
type RosterEntry struct {
	Student
	Status  Status `json:"status"`
	Remarks string `json:"remarks"`
}

// Summary aggregates a reconciled roster.
type Summary struct {
	Present    int `json:"present_count"`
	Absent     int `json:"absent_count"`
	Late       int `json:"late_count"`
	Total      int `json:"total_count"`
	Percentage int `json:"percentage"`
}

// ReconcileForDate merges a roster with existing attendance records. One
// entry is produced per roster student, in roster order; students without a
// record default to Present with empty remarks.
func ReconcileForDate(roster []Student, existing []Record) []RosterEntry {
	byStudent := make(map[int64]Record, len(existing))
	for _, rec := range existing {
		byStudent[rec.StudentID] = rec
	}

	entries := make([]RosterEntry, 0, len(roster))
	for _, st := range roster {
		entry := RosterEntry{Student: st, Status: StatusPresent}
		if rec, ok := byStudent[st.ID]; ok {
			entry.Status = rec.Status
			entry.Remarks = rec.Remarks
		}
		entries = append(entries, entry)
	}
	return entries
}

// ComputeSummary counts statuses over reconciled entries. Percentage is
// present/total rounded half-up to the nearest integer, 0 for an empty
// roster.
func ComputeSummary(entries []RosterEntry) Summary {
	var sum Summary
	sum.Total = len(entries)
	for _, e := range entries {
		switch e.Status {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		case StatusLate:
			sum.Late++
		}
	}
	if sum.Total > 0 {
		sum.Percentage = (sum.Present*200 + sum.Total) / (2 * sum.Total)
	}
	return sum
}
