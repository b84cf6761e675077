package bot

import "testing"

func TestSessionBeginComplete(t *testing.T) {
	s := newSessionStore()
	token := s.Begin(42, StateGeneratingAnalysis)
	if got := s.State(42); got != StateGeneratingAnalysis {
		t.Fatalf("state = %v, want StateGeneratingAnalysis", got)
	}
	if !s.Complete(42, token) {
		t.Fatal("Complete with current token must allow rendering")
	}
	if got := s.State(42); got != StateIdle {
		t.Fatalf("state after Complete = %v, want StateIdle", got)
	}
}

func TestSessionCancelDiscardsInFlightResult(t *testing.T) {
	s := newSessionStore()
	token := s.Begin(42, StateGeneratingForecast)
	s.Reset(42)
	if s.Complete(42, token) {
		t.Fatal("result from before cancel must be discarded")
	}
	if got := s.State(42); got != StateIdle {
		t.Fatalf("state after cancel = %v, want StateIdle", got)
	}
}

func TestSessionRestartSupersedesOlderWork(t *testing.T) {
	s := newSessionStore()
	first := s.Begin(42, StateGeneratingAnalysis)
	second := s.Begin(42, StateGeneratingAnalysis)
	if s.Complete(42, first) {
		t.Fatal("superseded work must not render")
	}
	if !s.Complete(42, second) {
		t.Fatal("latest work must render")
	}
}

func TestSessionsAreIsolatedPerChat(t *testing.T) {
	s := newSessionStore()
	s.Begin(1, StateGeneratingAnalysis)
	s.Set(2, StateSelectingCoin)
	if got := s.State(1); got != StateGeneratingAnalysis {
		t.Fatalf("chat 1 state = %v", got)
	}
	if got := s.State(2); got != StateSelectingCoin {
		t.Fatalf("chat 2 state = %v", got)
	}
	if got := s.State(3); got != StateIdle {
		t.Fatalf("fresh chat state = %v, want StateIdle", got)
	}
}

func TestActionCallbackUniques(t *testing.T) {
	want := map[Action]string{
		ActionDaily:      "daily",
		ActionWeekly:     "weekly",
		ActionNews:       "news",
		ActionSelectCoin: "specific_coin",
		ActionCoin:       "coin",
		ActionBack:       "back_to_main",
		ActionCancel:     "cancel",
	}
	for a, unique := range want {
		if got := a.callbackUnique(); got != unique {
			t.Errorf("action %d unique = %q, want %q", a, got, unique)
		}
	}
}
