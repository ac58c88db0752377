package models

import (
	"testing"
	"time"
)

func TestValidWaitlistTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{WaitlistStatusPending, WaitlistStatusContacted, true},
		{WaitlistStatusPending, WaitlistStatusBooked, true},
		{WaitlistStatusPending, WaitlistStatusCancelled, true},
		{WaitlistStatusPending, WaitlistStatusExpired, true},
		{WaitlistStatusContacted, WaitlistStatusContacted, true},
		{WaitlistStatusContacted, WaitlistStatusBooked, true},
		{WaitlistStatusContacted, WaitlistStatusCancelled, true},
		{WaitlistStatusContacted, WaitlistStatusExpired, true},
		{WaitlistStatusBooked, WaitlistStatusPending, false},
		{WaitlistStatusBooked, WaitlistStatusContacted, false},
		{WaitlistStatusBooked, WaitlistStatusCancelled, false},
		{WaitlistStatusCancelled, WaitlistStatusPending, false},
		{WaitlistStatusCancelled, WaitlistStatusBooked, false},
		{WaitlistStatusExpired, WaitlistStatusPending, false},
		{WaitlistStatusExpired, WaitlistStatusBooked, false},
		{"unknown", WaitlistStatusBooked, false},
	}

	for _, tt := range cases {
		if got := ValidWaitlistTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("ValidWaitlistTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestIsTerminalWaitlistStatus(t *testing.T) {
	terminal := []string{WaitlistStatusBooked, WaitlistStatusCancelled, WaitlistStatusExpired}
	for _, status := range terminal {
		if !IsTerminalWaitlistStatus(status) {
			t.Fatalf("expected %q to be terminal", status)
		}
	}
	for _, status := range []string{WaitlistStatusPending, WaitlistStatusContacted, "unknown"} {
		if IsTerminalWaitlistStatus(status) {
			t.Fatalf("expected %q not to be terminal", status)
		}
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	entry := WaitlistEntry{ExpiresAt: now.Add(time.Hour)}
	if entry.IsExpired(now) {
		t.Fatal("entry with future deadline reported expired")
	}
	entry.ExpiresAt = now.Add(-time.Hour)
	if !entry.IsExpired(now) {
		t.Fatal("entry past its deadline not reported expired")
	}
	entry.ExpiresAt = now
	if !entry.IsExpired(now) {
		t.Fatal("deadline exactly now should count as expired")
	}
}
