package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripFences removes markdown code fences that chat models wrap around JSON
// payloads despite being told not to.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// RepairJSON attempts to fix common JSON errors from LLM outputs.
// Uses github.com/RealAlexandreAI/json-repair for intelligent repair.
// Supported repairs:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - Trailing commas
// - Comments in JSON
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// MustRepairJSON is like RepairJSON but returns an empty object on failure.
func MustRepairJSON(malformedJSON string) string {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "{}"
	}
	return repaired
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson tolerates comments, unquoted keys and strings, and optional commas,
// which makes it the last-resort decoder for lenient LLM output.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// SmartParse tries multiple parsing strategies to decode LLM output into
// schema. Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
// Code fences are stripped before any attempt.
func SmartParse(input string, schema interface{}) error {
	input = StripFences(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if loose, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(loose), schema); err == nil {
			return nil
		}
	}

	return fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed")
}
