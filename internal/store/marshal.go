package store

import (
	"encoding/json"
	"fmt"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// marshalRules converts a rule sequence to canonical JSON TEXT.
func marshalRules(rules []string) (string, error) {
	if rules == nil {
		rules = []string{}
	}
	data, err := ir.MarshalCanonical(rules)
	if err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	return string(data), nil
}

// unmarshalRules parses the rules column.
func unmarshalRules(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var rules []string
	if err := json.Unmarshal([]byte(data), &rules); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	return rules, nil
}
