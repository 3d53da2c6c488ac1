package service

import (
	"agendo/pkg/model"
	"testing"
	"time"
)

var t10 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t10.Add(time.Duration(minutes) * time.Minute)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		s1, e1 time.Time
		s2, e2 time.Time
		want   bool
	}{
		{"identical", at(0), at(60), at(0), at(60), true},
		{"partial overlap at start", at(30), at(90), at(0), at(60), true},
		{"partial overlap at end", at(-30), at(30), at(0), at(60), true},
		{"contained", at(10), at(20), at(0), at(60), true},
		{"containing", at(-10), at(70), at(0), at(60), true},
		{"abuts end", at(60), at(120), at(0), at(60), false},
		{"abuts start", at(-60), at(0), at(0), at(60), false},
		{"disjoint", at(120), at(180), at(0), at(60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps() not symmetric, got %v", got)
			}
		})
	}
}

func TestFindConflict(t *testing.T) {
	pro := model.Resource{Kind: model.ResourceProfessional, ID: "5"}
	usr := model.Resource{Kind: model.ResourceUser, ID: "5"}

	existing := []*model.Booking{
		{ID: "a", ProfessionalID: "5", StartTime: at(0), EndTime: at(60), Status: model.StatusPending},
		{ID: "b", UserID: "5", StartTime: at(120), EndTime: at(180), Status: model.StatusConfirmed},
		{ID: "c", ProfessionalID: "5", StartTime: at(240), EndTime: at(300), Status: model.StatusCancelled},
		{ID: "d", ProfessionalID: "7", UserID: "5", StartTime: at(360), EndTime: at(420), Status: model.StatusPending},
	}

	tests := []struct {
		name      string
		resource  model.Resource
		start     time.Time
		end       time.Time
		excludeID string
		wantID    string
	}{
		{"professional overlap", pro, at(30), at(90), "", "a"},
		{"professional abutting", pro, at(60), at(120), "", ""},
		{"user-only booking ignored for professional", pro, at(120), at(180), "", ""},
		{"cancelled booking ignored", pro, at(240), at(300), "", ""},
		{"self excluded", pro, at(0), at(60), "a", ""},
		{"user overlap", usr, at(150), at(160), "", "b"},
		{"professional-only booking ignored for user", usr, at(0), at(60), "", ""},
		{"user id compared even when booking has professional", usr, at(380), at(390), "", "d"},
		{"no resource never conflicts", model.Resource{}, at(0), at(60), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindConflict(tt.resource, tt.start, tt.end, tt.excludeID, existing)
			switch {
			case tt.wantID == "" && got != nil:
				t.Errorf("expected no conflict, got %s", got.ID)
			case tt.wantID != "" && got == nil:
				t.Errorf("expected conflict with %s, got none", tt.wantID)
			case tt.wantID != "" && got.ID != tt.wantID:
				t.Errorf("conflict with %s, want %s", got.ID, tt.wantID)
			}
		})
	}
}
