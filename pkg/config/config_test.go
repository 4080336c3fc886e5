package config

import "testing"

func TestParseQuarterMonths(t *testing.T) {
	months, err := parseQuarterMonths("Q1:1-3,Q2:4-6,Q3:7-9,Q4:10-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 4 {
		t.Fatalf("expected 4 quarters, got %d", len(months))
	}
	q2 := months["Q2"]
	if len(q2) != 3 || q2[0] != 4 || q2[2] != 6 {
		t.Fatalf("unexpected Q2 months: %v", q2)
	}
}

func TestParseQuarterMonthsRejectsBadRange(t *testing.T) {
	if _, err := parseQuarterMonths("Q1:9-2"); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if _, err := parseQuarterMonths("Q1:0-13"); err == nil {
		t.Fatal("expected error for out of bounds months")
	}
	if _, err := parseQuarterMonths(""); err == nil {
		t.Fatal("expected error for empty calendar")
	}
}
