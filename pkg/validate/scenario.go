package validate

import (
	"strings"

	"github.com/eroom-dev/eroom/pkg/models"
)

// keywordRanges maps a difficulty to the inclusive interval its total
// keyword count must lie in.
var keywordRanges = map[string][2]int{
	models.DifficultyEasy:   {3, 5},
	models.DifficultyNormal: {6, 7},
	models.DifficultyHard:   {8, 9},
}

// nameModifiers are leading adjectives stripped when reducing an object
// name to its base for the diversity check ("RustyKey" and "GoldenKey"
// both reduce to "key").
var nameModifiers = []string{
	"old", "rusty", "ancient", "broken", "wooden", "metal", "iron",
	"stone", "golden", "silver", "small", "large", "big", "tiny",
	"hidden", "secret", "mysterious", "dusty", "glowing", "dark",
}

// CheckScenario validates the typed scenario the LLM produced against the
// structural and cross-field rules. freeModeling is the request's flag; it
// decides which visual description interactive objects must carry. First
// violation wins; diversity and double-description findings are warnings.
func CheckScenario(s *models.Scenario, freeModeling bool) Result {
	var res Result

	if s.Data == nil {
		res.Violation = violatef("scenario_data", "scenario_data section is missing")
		return res
	}
	if s.Objects == nil {
		res.Violation = violatef("object_instructions", "object_instructions section is missing")
		return res
	}

	if v := checkScenarioData(s.Data); v != nil {
		res.Violation = v
		return res
	}

	if len(s.Objects) == 0 {
		res.Violation = violatef("object_instructions", "object_instructions must not be empty")
		return res
	}
	if s.Objects[0].Name != models.GameManagerName {
		res.Violation = violatef("object_instructions",
			"first object instruction must be %q, got %q", models.GameManagerName, s.Objects[0].Name)
		return res
	}

	if !hasExitDoor(s.Objects) {
		res.Violation = violatef("object_instructions",
			"no %q instruction with an interactive_description", models.ExitDoorName)
		return res
	}

	for i := range s.Objects {
		if v := checkObject(&res, &s.Objects[i], freeModeling); v != nil {
			res.Violation = v
			return res
		}
	}

	kc := s.Data.KeywordCount
	if kc.User+kc.Expanded != kc.Total {
		res.Violation = violatef("keyword_count",
			"keyword_count mismatch: user %d + expanded %d != total %d", kc.User, kc.Expanded, kc.Total)
		return res
	}

	diff := s.Data.Difficulty
	bounds := keywordRanges[diff]
	if kc.Total < bounds[0] || kc.Total > bounds[1] {
		res.Violation = violatef("keyword_count",
			"keyword_count.total %d is out of range [%d,%d] for difficulty %q",
			kc.Total, bounds[0], bounds[1], diff)
		return res
	}

	if n := len(s.InteractiveObjects()); n != kc.Total {
		res.Violation = violatef("object_instructions",
			"scenario declares %d interactive objects but keyword_count.total is %d", n, kc.Total)
		return res
	}

	checkDiversity(&res, s.Objects)
	return res
}

func checkScenarioData(d *models.ScenarioData) *Violation {
	if strings.TrimSpace(d.Theme) == "" {
		return violatef("scenario_data.theme", "scenario_data.theme is missing")
	}
	if strings.TrimSpace(d.Description) == "" {
		return violatef("scenario_data.description", "scenario_data.description is missing")
	}
	if strings.TrimSpace(d.EscapeCondition) == "" {
		return violatef("scenario_data.escape_condition", "scenario_data.escape_condition is missing")
	}
	if len(d.PuzzleFlow) == 0 {
		return violatef("scenario_data.puzzle_flow", "scenario_data.puzzle_flow is missing")
	}
	switch d.ExitMechanism {
	case models.ExitMechanismKey, models.ExitMechanismCode, models.ExitMechanismLogicUnlock:
	default:
		return violatef("scenario_data.exit_mechanism",
			"exit_mechanism must be key, code, or logic_unlock, got %q", d.ExitMechanism)
	}
	if d.KeywordCount == nil {
		return violatef("scenario_data.keyword_count", "scenario_data.keyword_count is missing")
	}
	if !models.ValidDifficulty(d.Difficulty) {
		return violatef("scenario_data.difficulty",
			"difficulty must be easy, normal, or hard, got %q", d.Difficulty)
	}
	return nil
}

// hasExitDoor reports whether some instruction names the exit door and
// carries a non-blank interactive_description.
func hasExitDoor(objs []models.ObjectInstruction) bool {
	for i := range objs {
		o := &objs[i]
		if strings.Contains(o.Name, models.ExitDoorName) &&
			o.InteractiveDescription != nil &&
			strings.TrimSpace(*o.InteractiveDescription) != "" {
			return true
		}
	}
	return false
}

func checkObject(res *Result, o *models.ObjectInstruction, freeModeling bool) *Violation {
	if o.Type == models.ObjectTypeGameManager {
		return nil
	}

	hasInteractive := o.InteractiveDescription != nil
	hasMonologue := o.MonologueMessages != nil
	if !hasInteractive && !hasMonologue {
		return violatef("object_instructions",
			"object %q needs interactive_description or monologue_messages", o.Name)
	}
	if hasInteractive && hasMonologue {
		res.warnf("object %q has both interactive_description and monologue_messages; using interactive_description", o.Name)
	}
	if hasMonologue && len(*o.MonologueMessages) == 0 {
		return violatef("object_instructions",
			"object %q has an empty monologue_messages array", o.Name)
	}

	switch o.Type {
	case models.ObjectTypeExistingInteractive:
		if o.ID == nil || strings.TrimSpace(*o.ID) == "" {
			return violatef("object_instructions",
				"existing object %q is missing its id", o.Name)
		}
	case models.ObjectTypeInteractive:
		if freeModeling {
			if o.SimpleVisualDescription == nil || strings.TrimSpace(*o.SimpleVisualDescription) == "" {
				return violatef("object_instructions",
					"object %q needs simple_visual_description in free modeling mode", o.Name)
			}
		} else {
			if o.VisualDescription == nil || strings.TrimSpace(*o.VisualDescription) == "" {
				return violatef("object_instructions",
					"object %q needs visual_description", o.Name)
			}
		}
	}
	return nil
}

// checkDiversity warns when two newly created interactive objects reduce to
// the same base name. Non-fatal: repetitive rooms are a quality problem,
// not a correctness one.
func checkDiversity(res *Result, objs []models.ObjectInstruction) {
	seen := make(map[string]string)
	for i := range objs {
		o := &objs[i]
		if o.Type != models.ObjectTypeInteractive {
			continue
		}
		base := baseName(o.Name)
		if prev, dup := seen[base]; dup {
			res.warnf("objects %q and %q share base name %q", prev, o.Name, base)
			continue
		}
		seen[base] = o.Name
	}
}

// baseName lowercases a name, drops trailing digits, and strips one leading
// modifier word ("RustyKey2" → "key").
func baseName(name string) string {
	b := strings.ToLower(name)
	b = strings.TrimRight(b, "0123456789")
	for _, mod := range nameModifiers {
		if strings.HasPrefix(b, mod) && len(b) > len(mod) {
			b = b[len(mod):]
			break
		}
	}
	return strings.TrimLeft(b, "_ ")
}
