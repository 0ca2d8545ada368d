package llms

import (
	"encoding/json"
	"strings"

	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// parseJSONResponse decodes a model completion into a generic JSON object.
// Models occasionally wrap JSON-mode output in a markdown code fence even
// when told not to; the fence is stripped before decoding.
func parseJSONResponse(content string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to parse response as JSON")
	}
	return result, nil
}
