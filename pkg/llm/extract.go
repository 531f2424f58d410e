package llm

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/eroom-dev/eroom/pkg/models"
)

// codeBlock is one triple-backtick fenced region of a model response.
type codeBlock struct {
	lang string // tag after the opening fence, lowercased; "" when untagged
	body string // text between the tag line and the closing fence, verbatim
}

// fencedBlocks scans text for ```-fenced regions in document order. Models
// routinely open a fence mid-line ("here you go: ```json"), so fences are
// matched anywhere, not only at line starts. The tag runs to the first
// newline; an unterminated fence is ignored.
func fencedBlocks(text string) []codeBlock {
	var blocks []codeBlock
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		rest = rest[start+3:]

		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			break
		}
		tag := strings.TrimSpace(rest[:nl])
		rest = rest[nl+1:]

		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		blocks = append(blocks, codeBlock{
			lang: strings.ToLower(tag),
			body: rest[:end],
		})
		rest = rest[end+3:]
	}
	return blocks
}

// ExtractJSON returns the JSON source of a scenario response: the body of
// the first fenced block tagged "json" (or untagged), else the whole text.
func ExtractJSON(text string) string {
	for _, b := range fencedBlocks(text) {
		if b.lang == "" || b.lang == "json" {
			return strings.TrimSpace(b.body)
		}
	}
	return strings.TrimSpace(text)
}

// ParseScenario extracts and parses the scenario JSON from a model response.
// The typed scenario keeps the extracted bytes verbatim in Raw; the result
// document embeds them unmodified.
func ParseScenario(text string) (*models.Scenario, error) {
	src := cleanJSON(ExtractJSON(text))

	var sc models.Scenario
	if err := json.Unmarshal([]byte(src), &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScenarioParse, err)
	}
	sc.Raw = json.RawMessage(src)
	return &sc, nil
}

// cleanJSON strips the two JSON-ish habits models cannot drop: //-comments
// and trailing commas. String contents are left untouched.
func cleanJSON(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	inString := false
	escaped := false
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			out.WriteByte(ch)
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out.WriteByte('\n')
			}
		case ch == ',':
			// Drop the comma if the next non-whitespace closes a container.
			j := i + 1
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				continue
			}
			out.WriteByte(ch)
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}

// classDeclPattern matches the first public class declaration of a C# block:
// "public class Name :" / "public partial class Name {".
var classDeclPattern = regexp.MustCompile(`public\s+(?:partial\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[:{]`)

// ExtractScripts builds the script bundle from a scripts response. Every
// non-empty fenced block carrying a public class declaration contributes one
// entry: key = class name (trailing-C convention stripped, collisions
// suffixed _1, _2, …), value = Base64 of the block body as emitted.
func ExtractScripts(text string) models.ScriptBundle {
	bundle := models.ScriptBundle{}
	for _, b := range fencedBlocks(text) {
		if strings.TrimSpace(b.body) == "" {
			continue
		}
		m := classDeclPattern.FindStringSubmatch(b.body)
		if m == nil {
			continue
		}
		name := dedupeName(bundle, scriptName(m[1]))
		bundle[name] = base64.StdEncoding.EncodeToString([]byte(b.body))
	}
	return bundle
}

// scriptName strips the trailing-C marker generated classes carry
// (ExitDoorC → ExitDoor). A bare C stays C.
func scriptName(class string) string {
	if len(class) > 1 && strings.HasSuffix(class, "C") {
		return class[:len(class)-1]
	}
	return class
}

// dedupeName returns name, or the first name_N not yet taken in the bundle.
func dedupeName(bundle models.ScriptBundle, name string) string {
	if _, taken := bundle[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := bundle[candidate]; !taken {
			return candidate
		}
	}
}
