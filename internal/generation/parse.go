package generation

import (
	"bytes"
	"encoding/json"
)

// resultMessage is the structured line the generator prints last.
type resultMessage struct {
	Result *string `json:"result"`
	Error  *string `json:"error"`
}

// ParseOutput extracts the outcome from a generator's complete stdout.
//
// Lines are scanned from last to first and the first one that decodes as a
// JSON object is the result message; log lines printed before it are
// skipped. A non-empty "error" field wins over "result".
func ParseOutput(stdout []byte) (string, error) {
	lines := bytes.Split(stdout, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 || line[0] != '{' {
			continue
		}

		var msg resultMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		return msg.outcome()
	}
	return "", newError(ErrOutput, ReasonNoStructuredOutput, nil)
}

func (m resultMessage) outcome() (string, error) {
	switch {
	case m.Error != nil && *m.Error != "":
		return "", newError(ErrGenerator, *m.Error, nil)
	case m.Result != nil:
		return *m.Result, nil
	default:
		return "", newError(ErrOutput, ReasonEmptyMessage, nil)
	}
}
