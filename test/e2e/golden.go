package e2e

import (
	"encoding/json"
	"fmt"
)

// ScenarioDoc builds a scenario JSON document the validator accepts (as
// long as user+expanded lands in the difficulty's range): GameManager
// first, an ExitDoor existing object, and user+expanded interactive
// objects with distinct names.
func ScenarioDoc(difficulty string, user, expanded int) string {
	total := user + expanded

	objects := []map[string]any{
		{"name": "GameManager", "type": "game_manager"},
		{
			"name":                    "ExitDoor",
			"type":                    "existing_interactive_object",
			"id":                      "door-0",
			"interactive_description": "The heavy exit door. It needs a key.",
		},
	}
	for i := 0; i < total; i++ {
		objects = append(objects, map[string]any{
			"name":                      fmt.Sprintf("PuzzlePiece%d", i+1),
			"type":                      "interactive_object",
			"interactive_description":   fmt.Sprintf("Puzzle piece %d. Examine it.", i+1),
			"visual_description":        fmt.Sprintf("an ornate puzzle piece, variant %d", i+1),
			"simple_visual_description": fmt.Sprintf("puzzle piece %d", i+1),
		})
	}

	doc := map[string]any{
		"scenario_data": map[string]any{
			"theme":            "pirate cove",
			"description":      "Escape the cove before the tide returns.",
			"escape_condition": "Unlock the exit door with the captain's key.",
			"puzzle_flow":      "collect pieces, assemble the key, open the door",
			"exit_mechanism":   "key",
			"keyword_count":    map[string]int{"user": user, "expanded": expanded, "total": total},
			"difficulty":       difficulty,
		},
		"object_instructions": objects,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// ScenarioResponse wraps a scenario document the way models actually
// respond: prose around a fenced json block.
func ScenarioResponse(doc string) string {
	return "Here is your escape room scenario:\n```json\n" + doc + "\n```\nHave fun!"
}

// DefaultScriptsResponse is a scripts completion with two C# blocks. The
// trailing C on the class names exercises the naming convention strip.
const DefaultScriptsResponse = "Here are the scripts:\n" +
	"```csharp\n" +
	"public class GameManagerC : MonoBehaviour {\n" +
	"    void Start() { }\n" +
	"}\n" +
	"```\n" +
	"and the door:\n" +
	"```csharp\n" +
	"public class ExitDoorC : MonoBehaviour {\n" +
	"    public void Unlock() { }\n" +
	"}\n" +
	"```\n"
