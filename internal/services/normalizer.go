package services

import (
	"encoding/json"
	"strings"

	"github.com/securelearn/backend/internal/models"
)

// The generation service does not honor a fixed schema: field names, option
// shapes and correct-answer encodings drift between calls. Normalization is
// therefore total — malformed items are skipped or resolved by fallback,
// never surfaced as errors.

// Recognized field names, tried in order.
var (
	questionKeys = []string{"question", "text"}
	optionsKeys  = []string{"options", "choices", "answers"}
	correctKeys  = []string{"correct_option", "correct", "answer", "correct_answer"}
	itemsKeys    = []string{"generated_questions", "questions", "items"}
)

// NormalizeGenerated converts raw generation output into the canonical
// question shape. Items without usable question text or options are dropped.
// Every emitted question has exactly one resolved correct option.
func NormalizeGenerated(raw []byte) []models.NormalizedQuestion {
	items := extractItems(raw)
	if len(items) == 0 {
		return nil
	}

	normalized := make([]models.NormalizedQuestion, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		text := strings.TrimSpace(stringByKeys(obj, questionKeys))
		if text == "" {
			continue
		}

		options, flagged := flattenOptions(valueByKeys(obj, optionsKeys))
		if len(options) == 0 {
			continue
		}

		correct := resolveCorrectOption(valueByKeys(obj, correctKeys), options)
		if correct == "" {
			// No top-level indicator resolved; fall back to a per-choice
			// is_correct flag, then to the first option, so that every
			// persisted question has exactly one correct choice.
			correct = flagged
		}
		if correct == "" {
			correct = options[0]
		}

		explanation := strings.TrimSpace(stringByKeys(obj, []string{"explanation"}))

		normalized = append(normalized, models.NormalizedQuestion{
			Text:          text,
			Options:       options,
			CorrectOption: correct,
			Explanation:   explanation,
		})
	}

	return normalized
}

// extractItems locates the question array: either the document root itself or
// the first recognized wrapper key holding an array.
func extractItems(raw []byte) []any {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil
	}

	switch v := root.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range itemsKeys {
			if arr, ok := v[key].([]any); ok {
				return arr
			}
		}
	}
	return nil
}

// flattenOptions reduces each option entry to a trimmed string whether it
// arrived as a bare value or a keyed object. Empty options are dropped.
// Object options may carry their own correctness flag (the generation
// service emits choices as {text, is_correct}); flagged reports the first
// option marked that way.
func flattenOptions(value any) (options []string, flagged string) {
	arr, ok := value.([]any)
	if !ok {
		return nil, ""
	}

	options = make([]string, 0, len(arr))
	for _, entry := range arr {
		var text string
		var isCorrect bool
		switch v := entry.(type) {
		case string:
			text = v
		case map[string]any:
			text = stringByKeys(v, []string{"text", "option", "value"})
			isCorrect = boolByKeys(v, []string{"is_correct", "isCorrect", "correct"})
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, text)
		if isCorrect && flagged == "" {
			flagged = text
		}
	}
	return options, flagged
}

// resolveCorrectOption maps the correct-answer indicator onto the flattened
// option list. A pure-digit string (or JSON number) is a zero-based index;
// anything else must match option text literally. Returns "" when unresolved.
func resolveCorrectOption(value any, options []string) string {
	switch v := value.(type) {
	case float64:
		idx := int(v)
		if idx >= 0 && idx < len(options) {
			return options[idx]
		}
		return ""
	case string:
		indicator := strings.TrimSpace(v)
		if indicator == "" {
			return ""
		}
		if isDigits(indicator) {
			idx := digitsToInt(indicator)
			if idx >= 0 && idx < len(options) {
				return options[idx]
			}
			return ""
		}
		for _, opt := range options {
			if opt == indicator {
				return opt
			}
		}
		return ""
	case map[string]any:
		// Some responses wrap the correct answer as {text: ...}
		return resolveCorrectOption(stringByKeys(v, []string{"text", "option", "value"}), options)
	default:
		return ""
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func digitsToInt(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return -1
		}
	}
	return n
}

// boolByKeys returns the first boolean value among keys, false when absent.
func boolByKeys(obj map[string]any, keys []string) bool {
	for _, key := range keys {
		if b, ok := obj[key].(bool); ok {
			return b
		}
	}
	return false
}

// stringByKeys returns the first non-empty string value among keys.
func stringByKeys(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// valueByKeys returns the first present value among keys.
func valueByKeys(obj map[string]any, keys []string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
