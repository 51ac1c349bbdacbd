package llm

import (
	"strings"

	"github.com/joseph-ayodele/statement-parser/internal/common"
)

// ErrNoJSONFound means the response holds no complete JSON object.
var ErrNoJSONFound = common.NewAppError(common.KindNoJSONFound, "No valid JSON found in AI response", nil)

// ExtractJSONObject returns the first balanced {...} in resp, outer braces included.
// Braces are counted by depth from the first '{'; a response that ends before the
// depth returns to zero is treated as truncated. Braces inside string values are
// counted too.
func ExtractJSONObject(resp string) (string, error) {
	start := strings.IndexByte(resp, '{')
	if start < 0 {
		return "", ErrNoJSONFound
	}
	depth := 0
	for i := start; i < len(resp); i++ {
		switch resp[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return resp[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONFound
}
