package ssebridge

import "testing"

func collect(rx *Receiver) []string {
	var got []string
	for {
		ev, ok := rx.TryRecv()
		if !ok {
			return got
		}
		got = append(got, ev.String())
	}
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d events %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
