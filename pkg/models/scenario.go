package models

import "encoding/json"

// Object instruction types emitted by the scenario model.
const (
	ObjectTypeGameManager         = "game_manager"
	ObjectTypeInteractive         = "interactive_object"
	ObjectTypeExistingInteractive = "existing_interactive_object"
)

// GameManagerName is the mandatory name of the first object instruction.
const GameManagerName = "GameManager"

// ExitDoorName is the substring that marks the exit-door instruction.
const ExitDoorName = "ExitDoor"

// Exit mechanisms a scenario may declare.
const (
	ExitMechanismKey         = "key"
	ExitMechanismCode        = "code"
	ExitMechanismLogicUnlock = "logic_unlock"
)

// Scenario is the typed form of the LLM's scenario JSON. Raw holds the
// verbatim extracted bytes; the result document embeds them unmodified.
type Scenario struct {
	Data    *ScenarioData       `json:"scenario_data"`
	Objects []ObjectInstruction `json:"object_instructions"`
	Raw     json.RawMessage     `json:"-"`
}

// ScenarioData is the scenario_data section. PuzzleFlow is kept as raw JSON:
// models emit anything from a sentence to a step array there.
type ScenarioData struct {
	Theme           string          `json:"theme"`
	Description     string          `json:"description"`
	EscapeCondition string          `json:"escape_condition"`
	PuzzleFlow      json.RawMessage `json:"puzzle_flow,omitempty"`
	ExitMechanism   string          `json:"exit_mechanism"`
	KeywordCount    *KeywordCount   `json:"keyword_count,omitempty"`
	Difficulty      string          `json:"difficulty"`
}

// KeywordCount tracks how many puzzle keywords the scenario uses.
// Invariant: User + Expanded == Total.
type KeywordCount struct {
	User     int `json:"user"`
	Expanded int `json:"expanded"`
	Total    int `json:"total"`
}

// ObjectInstruction describes one object the room needs. Optional fields are
// pointers so that absent and present-but-empty are distinguishable.
type ObjectInstruction struct {
	Name                    string    `json:"name"`
	Type                    string    `json:"type"`
	ID                      *string   `json:"id,omitempty"`
	InteractiveDescription  *string   `json:"interactive_description,omitempty"`
	MonologueMessages       *[]string `json:"monologue_messages,omitempty"`
	VisualDescription       *string   `json:"visual_description,omitempty"`
	SimpleVisualDescription *string   `json:"simple_visual_description,omitempty"`
}

// InteractiveObjects returns the instructions with type interactive_object,
// in document order. These are the objects sent to 3D generation; their
// ordinal positions drive API key rotation.
func (s *Scenario) InteractiveObjects() []ObjectInstruction {
	var out []ObjectInstruction
	for _, obj := range s.Objects {
		if obj.Type == ObjectTypeInteractive {
			out = append(out, obj)
		}
	}
	return out
}

// VisualPrompt returns the text-to-3D prompt for the instruction:
// simple_visual_description in free-modeling mode, visual_description
// otherwise. Empty string when the relevant field is absent.
func (o *ObjectInstruction) VisualPrompt(freeModeling bool) string {
	if freeModeling {
		if o.SimpleVisualDescription != nil {
			return *o.SimpleVisualDescription
		}
		return ""
	}
	if o.VisualDescription != nil {
		return *o.VisualDescription
	}
	return ""
}
