package game

// ResultKind discriminates action outcomes. Turn consumption and error
// kind are structural, never inferred from message text.
type ResultKind string

const (
	ResultSuccess           ResultKind = "success"
	ResultInvalidLocation   ResultKind = "invalid_location"
	ResultEvidenceNotFound  ResultKind = "evidence_not_found"
	ResultUnknownCharacter  ResultKind = "unknown_character"
	ResultGenerationFailure ResultKind = "generation_failure"
	ResultUnrecognized      ResultKind = "unrecognized"
	ResultOutOfTurn         ResultKind = "out_of_turn"

	// ResultAwaitingLine reports a suspended conversation: the dialog
	// cannot continue until AwaitingSpeaker's next line is supplied.
	ResultAwaitingLine ResultKind = "awaiting_line"
)

// Result is the structured outcome of one game action.
type Result struct {
	Kind    ResultKind `json:"kind"`
	Message string     `json:"message,omitempty"`

	// ValidOptions carries the retry list for recoverable failures:
	// valid locations, evidence names, or character names.
	ValidOptions []string `json:"valid_options,omitempty"`

	// Evidence payload, set on successful inspections.
	Evidence     string `json:"evidence,omitempty"`
	EvidenceInfo string `json:"evidence_info,omitempty"`

	TurnConsumed    bool   `json:"turn_consumed"`
	AwaitingSpeaker string `json:"awaiting_speaker,omitempty"`
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Kind == ResultSuccess
}
