package llm

import "errors"

// Sentinel errors for LLM gateway operations. All of them fail the job that
// triggered the call; none of them terminate the process.
var (
	// ErrMissingAPIKey indicates ANTHROPIC_KEY was not set when the client
	// was first used.
	ErrMissingAPIKey = errors.New("ANTHROPIC_KEY is not set")

	// ErrRequestFailed indicates the provider returned a non-2xx response.
	ErrRequestFailed = errors.New("llm request failed")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("llm returned no content")

	// ErrScenarioParse indicates the scenario response had no parseable JSON.
	ErrScenarioParse = errors.New("scenario JSON could not be parsed")

	// ErrNoScripts indicates the scripts response contained no fenced block
	// with a public class declaration.
	ErrNoScripts = errors.New("no scripts found in llm response")
)
