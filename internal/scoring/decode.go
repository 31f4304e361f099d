package scoring

import (
	"bytes"
	"encoding/json"

	"wellbeing/internal/domain"
)

// DecodeResponses parses a JSON response list. Anything other than an array
// of {questionId, optionId} objects is an InvalidInputError.
func DecodeResponses(raw json.RawMessage) ([]domain.Response, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.InvalidInput("responses are required")
	}
	if trimmed[0] != '[' {
		return nil, domain.InvalidInput("responses must be a list")
	}
	var out []domain.Response
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, domain.InvalidInput("malformed responses: %v", err)
	}
	if out == nil {
		out = []domain.Response{}
	}
	return out, nil
}
