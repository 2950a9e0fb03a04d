package progression

import (
	"encoding/json"
	"fmt"
)

// State holds exactly one strategy and serializes it with its type tag:
//
//	{"type": "linear", "params": {"training_max": {...}, "use_amrap": true, "base_sets": 5}}
type State struct {
	Strategy
}

// NewState wraps s.
func NewState(s Strategy) State {
	return State{Strategy: s}
}

type envelope struct {
	Type   Kind            `json:"type"`
	Params json.RawMessage `json:"params"`
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	if s.Strategy == nil {
		return nil, fmt.Errorf("%w: no strategy set", ErrInvalidState)
	}
	params, err := json.Marshal(s.Strategy)
	if err != nil {
		return nil, fmt.Errorf("encoding %s params: %w", s.Kind(), err)
	}
	return json.Marshal(envelope{Type: s.Kind(), Params: params})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding progression state: %w", err)
	}
	strategy, err := newStrategy(env.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Params, strategy); err != nil {
		return fmt.Errorf("decoding %s params: %w", env.Type, err)
	}
	s.Strategy = strategy
	return nil
}

// Clone deep-copies the wrapped strategy.
func (s State) Clone() State {
	if s.Strategy == nil {
		return s
	}
	return State{Strategy: s.Strategy.Clone()}
}

// Validate reports whether a strategy is set and satisfies its invariants.
func (s State) Validate() error {
	if s.Strategy == nil {
		return fmt.Errorf("%w: no strategy set", ErrInvalidState)
	}
	return s.Strategy.Validate()
}

// Unit is the weight unit the strategy tracks.
func (s State) Unit() Unit {
	switch v := s.Strategy.(type) {
	case *Linear:
		return v.TrainingMax.Unit
	case *RepsPerSet:
		return v.CurrentWeight.Unit
	case *MinimalSets:
		return v.CurrentWeight.Unit
	default:
		return ""
	}
}

func newStrategy(k Kind) (Strategy, error) {
	switch k {
	case KindLinear:
		return &Linear{}, nil
	case KindRepsPerSet:
		return &RepsPerSet{}, nil
	case KindMinimalSets:
		return &MinimalSets{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown progression type %q", ErrInvalidState, k)
	}
}
