package widget

import "github.com/tidwall/gjson"

// NoResponse is shown when the proxy answers without any recognizable reply.
const NoResponse = "(no response)"

// ExtractReply pulls the assistant text out of a completion body, trying the
// chat field, then the legacy text field.
func ExtractReply(body []byte) string {
	for _, path := range []string{"choices.0.message.content", "choices.0.text"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return NoResponse
}
