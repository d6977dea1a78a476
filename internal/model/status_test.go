package model

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"Processing":  StatusInProgress,
		"PENDING":     StatusInProgress,
		"shipped":     StatusInProgress,
		"in-progress": StatusInProgress,
		"completed":   StatusCompleted,
		"Delivered":   StatusDelivered,
		"canceled":    StatusCancelled,
		"cancelled":   StatusCancelled,
		"CANCELLED":   StatusCancelled,
		"":            StatusInProgress,
	}
	for raw, want := range cases {
		if got := NormalizeStatus(raw); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeStatusUnknownPassesThrough(t *testing.T) {
	got := NormalizeStatus("awaiting_review")
	if got != Status("awaiting_review") {
		t.Fatalf("unknown status should pass through, got %q", got)
	}
	if got.Known() {
		t.Fatal("passed-through status should not report Known")
	}
}

func TestStatusTransitions(t *testing.T) {
	if !StatusInProgress.CanTransition(StatusCompleted) {
		t.Error("in-progress -> completed should be allowed")
	}
	if !StatusInProgress.CanTransition(StatusCancelled) {
		t.Error("in-progress -> cancelled should be allowed")
	}
	if !StatusCompleted.CanTransition(StatusDelivered) {
		t.Error("completed -> delivered should be allowed")
	}
	if StatusCancelled.CanTransition(StatusInProgress) {
		t.Error("cancelled is terminal")
	}
	if StatusDelivered.CanTransition(StatusCompleted) {
		t.Error("delivered is terminal")
	}
}

func TestCancellable(t *testing.T) {
	for _, raw := range []string{"pending", "Processing", "in-progress"} {
		if !Cancellable(raw) {
			t.Errorf("Cancellable(%q) should be true", raw)
		}
	}
	for _, raw := range []string{"shipped", "delivered", "cancelled", "completed"} {
		if Cancellable(raw) {
			t.Errorf("Cancellable(%q) should be false", raw)
		}
	}
}
