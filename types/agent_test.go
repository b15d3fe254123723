package types

import (
	"errors"
	"math"
	"testing"
)

type stubAction string

func (a stubAction) Hash() string { return string(a) }

type stubState struct {
	id      string
	actions []Action
}

func (s *stubState) Hash() string      { return s.id }
func (s *stubState) Actions() []Action { return s.actions }

func newStubState(id string, actions ...string) *stubState {
	s := &stubState{id: id}
	for _, a := range actions {
		s.actions = append(s.actions, stubAction(a))
	}
	return s
}

func newTestAgent(t *testing.T, config *AgentConfig) *Agent {
	t.Helper()
	agent, err := NewAgent(config)
	if err != nil {
		t.Fatal(err)
	}
	return agent
}

func TestAgentConfigValidation(t *testing.T) {
	cases := []AgentConfig{
		{Alpha: 0, Gamma: 0.9},
		{Alpha: 1.5, Gamma: 0.9},
		{Alpha: 0.5, Gamma: -0.1},
		{Alpha: 0.5, Gamma: 1.1},
		{Alpha: 0.5, Gamma: 0.9, Selection: SelectSoftmax, Temperature: 0},
	}
	for i, c := range cases {
		if _, err := NewAgent(&c); !errors.Is(err, ErrMalformedConfig) {
			t.Errorf("case %d: expected malformed config, got %v", i, err)
		}
	}
}

func TestZeroTransitionLeavesTableUnchanged(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9})
	state := newStubState("s", "a")
	next := newStubState("n", "a")

	for i := 0; i < 5; i++ {
		if err := agent.UpdateStep(state, stubAction("a"), 0, next, false); err != nil {
			t.Fatal(err)
		}
	}
	if v := agent.Table().Get("s", "a", 0); v != 0 {
		t.Errorf("zero reward over zero values must stay 0, got %f", v)
	}
}

func TestBellmanUpdate(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9})
	state := newStubState("s", "a")
	next := newStubState("n", "b")
	agent.Table().Set("n", "b", 2)

	if err := agent.UpdateStep(state, stubAction("a"), 1, next, false); err != nil {
		t.Fatal(err)
	}
	// 0 + 0.5 * (1 + 0.9*2 - 0)
	if v := agent.Table().Get("s", "a", 0); math.Abs(v-1.4) > 1e-9 {
		t.Errorf("expected 1.4, got %f", v)
	}
}

func TestTerminalUpdateIgnoresFuture(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9})
	state := newStubState("s", "a")
	next := newStubState("n", "b")
	agent.Table().Set("n", "b", 100)

	if err := agent.UpdateStep(state, stubAction("a"), 1, next, true); err != nil {
		t.Fatal(err)
	}
	if v := agent.Table().Get("s", "a", 0); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("terminal target must drop the future term, got %f", v)
	}
}

func TestFinishEpisodePropagatesReturn(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 1, Gamma: 0.5, Update: UpdateEpisodic})
	s1 := newStubState("s1", "a")
	s2 := newStubState("s2", "a")
	s3 := newStubState("s3", "a")

	for _, s := range []*stubState{s1, s2} {
		if err := agent.RecordStep(s, stubAction("a"), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := agent.RecordStep(s3, stubAction("a"), 1); err != nil {
		t.Fatal(err)
	}
	agent.FinishEpisode()

	// G walks backward: 1, 0.5, 0.25. Alpha 1 writes G directly.
	for _, c := range []struct {
		state string
		want  float64
	}{{"s3", 1}, {"s2", 0.5}, {"s1", 0.25}} {
		if v := agent.Table().Get(c.state, "a", 0); math.Abs(v-c.want) > 1e-9 {
			t.Errorf("Q(%s, a) = %f, want %f", c.state, v, c.want)
		}
	}
}

func TestFinalStepReturnMatchesBellman(t *testing.T) {
	mc := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9, Update: UpdateEpisodic})
	td := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9})
	state := newStubState("s", "a")

	if err := mc.RecordStep(state, stubAction("a"), 1); err != nil {
		t.Fatal(err)
	}
	mc.FinishEpisode()
	if err := td.UpdateStep(state, stubAction("a"), 1, nil, true); err != nil {
		t.Fatal(err)
	}

	got, want := mc.Table().Get("s", "a", 0), td.Table().Get("s", "a", 0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("single-step episode: return pass gave %f, terminal Bellman gave %f", got, want)
	}
}

func TestCreditOutcomeRewritesLastReward(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 1, Gamma: 0.9, Update: UpdateEpisodic})
	state := newStubState("s", "a")
	if err := agent.RecordStep(state, stubAction("a"), 0); err != nil {
		t.Fatal(err)
	}
	agent.CreditOutcome(-1)
	agent.FinishEpisode()

	if v := agent.Table().Get("s", "a", 0); v != -1 {
		t.Errorf("credited outcome must replace the recorded reward, got %f", v)
	}
}

func TestGreedySelectionIsDeterministic(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9, Seed: 7})
	state := newStubState("s", "a", "b", "c")
	agent.Table().Set("s", "b", 1)

	for i := 0; i < 50; i++ {
		action, err := agent.SelectAction(state, state.Actions(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if action.Hash() != "b" {
			t.Fatalf("epsilon 0 must exploit, got %q", action.Hash())
		}
	}
}

func TestUniformExplorationCoversActions(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9, Seed: 11})
	state := newStubState("s", "a", "b", "c")
	agent.Table().Set("s", "a", 100)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		action, err := agent.SelectAction(state, state.Actions(), 1)
		if err != nil {
			t.Fatal(err)
		}
		seen[action.Hash()] = true
	}
	if len(seen) != 3 {
		t.Errorf("epsilon 1 should reach every action, saw %d of 3", len(seen))
	}
}

func TestSoftmaxFavorsDominantValue(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{
		Alpha: 0.5, Gamma: 0.9,
		Selection: SelectSoftmax, Temperature: 1, Seed: 5,
	})
	state := newStubState("s", "good", "bad")
	agent.Table().Set("s", "good", 50)
	agent.Table().Set("s", "bad", 0)

	for i := 0; i < 50; i++ {
		action, err := agent.SelectAction(state, state.Actions(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if action.Hash() != "good" {
			t.Fatalf("value gap of 50 at temperature 1 makes the choice certain, got %q", action.Hash())
		}
	}
}

func TestSelectActionRejectsEmpty(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9})
	state := newStubState("terminal")
	if _, err := agent.SelectAction(state, nil, 0.5); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected invalid action, got %v", err)
	}
}

func TestRecordAndUpdateRejectForeignActions(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9})
	state := newStubState("s", "a")

	if err := agent.RecordStep(state, stubAction("z"), 0); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("RecordStep: expected invalid action, got %v", err)
	}
	if err := agent.UpdateStep(state, stubAction("z"), 0, nil, true); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("UpdateStep: expected invalid action, got %v", err)
	}
	if n := agent.HistoryLen(); n != 0 {
		t.Errorf("rejected step must not enter history, have %d", n)
	}
}

func TestResetEpisodeClearsHistory(t *testing.T) {
	agent := newTestAgent(t, &AgentConfig{Alpha: 0.5, Gamma: 0.9, Update: UpdateEpisodic})
	state := newStubState("s", "a")
	if err := agent.RecordStep(state, stubAction("a"), 0); err != nil {
		t.Fatal(err)
	}
	agent.ResetEpisode()
	if n := agent.HistoryLen(); n != 0 {
		t.Errorf("expected empty history, have %d", n)
	}
}
