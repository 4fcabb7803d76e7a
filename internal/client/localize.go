// internal/client/localize.go
package client

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fieldLabels maps wire field names to human labels for validation detail
// rewriting.
var fieldLabels = map[string]string{
	"question":       "Question",
	"datasource":     "Datasource ID",
	"action":         "Action ID",
	"aiProvider":     "AI Provider ID",
	"conversationId": "Conversation ID",
	"limit":          "Limit",
	"title":          "Title",
	"body":           "Request body",
}

// validationTemplates are the known server-side validation message shapes. A
// matching message gets its field token replaced by the human label;
// unrecognized messages pass through unchanged.
var validationTemplates = []*regexp.Regexp{
	regexp.MustCompile(`^(\w+) is required$`),
	regexp.MustCompile(`^(\w+) must be at most \d+ characters$`),
	regexp.MustCompile(`^(\w+) must be a positive integer$`),
	regexp.MustCompile(`^(\w+) must be at most \d+$`),
}

// rewriteDetails converts raw detail entries into display strings. String
// entries of form "field: message" get their field mapped to a label and the
// message localized; non-string entries are coerced best-effort.
func rewriteDetails(raw []interface{}) []string {
	if len(raw) == 0 {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		out = append(out, rewriteDetail(entry))
	}
	return out
}

func rewriteDetail(entry interface{}) string {
	switch v := entry.(type) {
	case string:
		return rewriteDetailString(v)
	case float64, int, int64, bool, nil:
		return fmt.Sprint(v)
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			return rewriteDetailString(msg)
		}
	}

	if data, err := json.Marshal(entry); err == nil {
		return string(data)
	}
	return fmt.Sprint(entry)
}

func rewriteDetailString(detail string) string {
	field, message, found := strings.Cut(detail, ": ")
	if !found {
		if localized, ok := localizeValidationMessage(detail); ok {
			return localized
		}
		return detail
	}

	label, known := fieldLabels[field]
	if !known {
		return detail
	}

	for _, tmpl := range validationTemplates {
		if m := tmpl.FindStringSubmatch(message); m != nil {
			localized := strings.Replace(message, m[1], label, 1)
			return label + ": " + localized
		}
	}
	return label + ": " + message
}

// localizeValidationMessage recognizes a bare validation phrase (no field
// prefix) and rewrites its field token to the human label.
func localizeValidationMessage(message string) (string, bool) {
	for _, tmpl := range validationTemplates {
		if m := tmpl.FindStringSubmatch(message); m != nil {
			if label, known := fieldLabels[m[1]]; known {
				return strings.Replace(message, m[1], label, 1), true
			}
			return message, true
		}
	}
	return "", false
}
