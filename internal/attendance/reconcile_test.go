package attendance

import "testing"

func testRoster() []Student {
	return []Student{
		{ID: 1, Code: "S001", FirstName: "Aanya", LastName: "Rao"},
		{ID: 2, Code: "S002", FirstName: "Bilal", LastName: "Khan"},
		{ID: 3, Code: "S003", FirstName: "Chitra", LastName: "Iyer"},
	}
}

func TestReconcileDefaultsToPresent(t *testing.T) {
	entries := ReconcileForDate(testRoster(), nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Status != StatusPresent {
			t.Errorf("student %d: expected Present, got %s", e.ID, e.Status)
		}
		if e.Remarks != "" {
			t.Errorf("student %d: expected empty remarks, got %q", e.ID, e.Remarks)
		}
	}
}

func TestReconcileCarriesOverRecords(t *testing.T) {
	existing := []Record{
		{StudentID: 2, Date: "2026-03-02", Status: StatusLate, Remarks: "bus delay"},
		{StudentID: 3, Date: "2026-03-02", Status: StatusExcused, Remarks: "medical"},
	}
	entries := ReconcileForDate(testRoster(), existing)

	if entries[0].Status != StatusPresent {
		t.Errorf("student 1: expected default Present, got %s", entries[0].Status)
	}
	if entries[1].Status != StatusLate || entries[1].Remarks != "bus delay" {
		t.Errorf("student 2: expected Late/bus delay, got %s/%q", entries[1].Status, entries[1].Remarks)
	}
	if entries[2].Status != StatusExcused || entries[2].Remarks != "medical" {
		t.Errorf("student 3: expected Excused/medical, got %s/%q", entries[2].Status, entries[2].Remarks)
	}
}

func TestReconcilePreservesRosterOrder(t *testing.T) {
	roster := testRoster()
	// Records deliberately out of roster order.
	existing := []Record{
		{StudentID: 3, Status: StatusAbsent},
		{StudentID: 1, Status: StatusLate},
	}
	entries := ReconcileForDate(roster, existing)
	if len(entries) != len(roster) {
		t.Fatalf("expected %d entries, got %d", len(roster), len(entries))
	}
	for i, e := range entries {
		if e.ID != roster[i].ID {
			t.Errorf("position %d: expected student %d, got %d", i, roster[i].ID, e.ID)
		}
	}
}

func TestReconcileEmptyRoster(t *testing.T) {
	entries := ReconcileForDate(nil, []Record{{StudentID: 1, Status: StatusLate}})
	if len(entries) != 0 {
		t.Errorf("expected no entries for empty roster, got %d", len(entries))
	}
}

func TestComputeSummary(t *testing.T) {
	entries := []RosterEntry{
		{Status: StatusPresent},
		{Status: StatusPresent},
		{Status: StatusAbsent},
		{Status: StatusLate},
		{Status: StatusExcused},
	}
	sum := ComputeSummary(entries)
	if sum.Present != 2 || sum.Absent != 1 || sum.Late != 1 || sum.Total != 5 {
		t.Errorf("unexpected counts: %+v", sum)
	}
	if sum.Present+sum.Absent+sum.Late > sum.Total {
		t.Errorf("bucket counts exceed total: %+v", sum)
	}
	if sum.Percentage != 40 {
		t.Errorf("expected 40%%, got %d", sum.Percentage)
	}
}

func TestComputeSummaryRoundsHalfUp(t *testing.T) {
	// 1 of 8 present = 12.5%, rounds to 13.
	entries := make([]RosterEntry, 8)
	entries[0].Status = StatusPresent
	for i := 1; i < 8; i++ {
		entries[i].Status = StatusAbsent
	}
	if got := ComputeSummary(entries).Percentage; got != 13 {
		t.Errorf("expected 13, got %d", got)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	sum := ComputeSummary(nil)
	if sum.Total != 0 || sum.Percentage != 0 {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

func TestReconcileAndSummaryScenario(t *testing.T) {
	// Roster [S1, S2]; S1 recorded Late; S2 defaults to Present.
	roster := []Student{{ID: 1, Code: "S1"}, {ID: 2, Code: "S2"}}
	existing := []Record{{StudentID: 1, Date: "2026-03-02", Status: StatusLate}}

	entries := ReconcileForDate(roster, existing)
	if entries[0].Status != StatusLate || entries[1].Status != StatusPresent {
		t.Fatalf("unexpected statuses: %s, %s", entries[0].Status, entries[1].Status)
	}

	sum := ComputeSummary(entries)
	want := Summary{Present: 1, Absent: 0, Late: 1, Total: 2, Percentage: 50}
	if sum != want {
		t.Errorf("expected %+v, got %+v", want, sum)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("Holiday").Valid() {
		t.Error("unknown status accepted")
	}
	if Status("present").Valid() {
		t.Error("status validation should be case-sensitive")
	}
}
