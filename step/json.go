package step

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status values used by the JSON encoding of a step state.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

type stateJSON struct {
	Status  string          `json:"status"`
	Summary string          `json:"summary"`
	Output  json.RawMessage `json:"output,omitempty"`
}

type stepJSON struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	GeneratedText *string   `json:"generatedText,omitempty"`
	State         stateJSON `json:"state"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MarshalJSON encodes the step with a tagged state.
func (s *Step) MarshalJSON() ([]byte, error) {
	out := stepJSON{
		ID:        s.id,
		Type:      s.typ,
		CreatedAt: s.createdAt,
	}
	if s.hasGeneratedText {
		text := s.generatedText
		out.GeneratedText = &text
	}

	switch st := s.state.(type) {
	case Succeeded:
		out.State = stateJSON{Status: StatusSucceeded, Summary: st.Summary}
		if st.HasOutput() {
			raw, err := json.Marshal(st.Output)
			if err != nil {
				return nil, fmt.Errorf("step: encode output: %w", err)
			}
			out.State.Output = raw
		}
	case Failed:
		out.State = stateJSON{Status: StatusFailed, Summary: st.Summary}
	default:
		return nil, fmt.Errorf("step: unknown state %T", s.state)
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes a step produced by MarshalJSON.
// Succeeded output is decoded into generic JSON values (maps, slices, numbers).
func (s *Step) UnmarshalJSON(data []byte) error {
	var in stepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var state State
	switch in.State.Status {
	case StatusSucceeded:
		st := Succeeded{Summary: in.State.Summary}
		if len(in.State.Output) > 0 && string(in.State.Output) != "null" {
			if err := json.Unmarshal(in.State.Output, &st.Output); err != nil {
				return fmt.Errorf("step: decode output: %w", err)
			}
		}
		state = st
	case StatusFailed:
		state = Failed{Summary: in.State.Summary}
	default:
		return fmt.Errorf("step: unknown state status %q", in.State.Status)
	}

	*s = Step{
		id:        in.ID,
		typ:       in.Type,
		state:     state,
		createdAt: in.CreatedAt,
	}
	if in.GeneratedText != nil {
		s.generatedText = *in.GeneratedText
		s.hasGeneratedText = true
	}
	return nil
}
