package model

import "testing"

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{"archived", StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	for _, s := range []BookingStatus{StatusCancelled, StatusCompleted} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if BookingStatus("approved").Valid() {
		t.Errorf("unknown status reported valid")
	}
}

func TestResourceSelector_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		selector  ResourceSelector
		wantKind  ResourceKind
		wantID    string
		wantField string
	}{
		{"professional only", ResourceSelector{ProfessionalID: "p1"}, ResourceProfessional, "p1", "professional_id"},
		{"user only", ResourceSelector{UserID: "u1"}, ResourceUser, "u1", "user_id"},
		{"professional wins over user", ResourceSelector{ProfessionalID: "p1", UserID: "u1"}, ResourceProfessional, "p1", "professional_id"},
		{"neither", ResourceSelector{}, ResourceNone, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.selector.Resolve()
			if r.Kind != tt.wantKind || r.ID != tt.wantID {
				t.Errorf("Resolve() = %+v, want %s/%s", r, tt.wantKind, tt.wantID)
			}
			if r.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", r.Field(), tt.wantField)
			}
			if r.IsZero() != (tt.wantKind == ResourceNone) {
				t.Errorf("IsZero() = %v", r.IsZero())
			}
		})
	}
}

func TestBookingChanges_Reschedules(t *testing.T) {
	notes := "window seat"
	professional := "p2"

	if (&BookingChanges{Notes: &notes}).Reschedules() {
		t.Error("notes-only change must not count as reschedule")
	}
	if !(&BookingChanges{ProfessionalID: &professional}).Reschedules() {
		t.Error("resource change must count as reschedule")
	}
}
