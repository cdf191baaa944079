package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ================================================================
// API Error Extraction
// ================================================================

// errorBody is the shared error-body convention of the analytics API.
// detail is either a plain string or a list of {msg: ...} objects
// (validation errors); some endpoints use message instead.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

// extractError turns a non-success response body into a human-readable
// message. Precedence: detail as string, detail as list of msg objects
// joined with ", ", message, the raw body text, then "HTTP <status>".
func extractError(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if len(eb.Detail) > 0 {
			var s string
			if err := json.Unmarshal(eb.Detail, &s); err == nil && s != "" {
				return s
			}
			var items []detailItem
			if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if it.Msg != "" {
						msgs = append(msgs, it.Msg)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, ", ")
				}
			}
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
