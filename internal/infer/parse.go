// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/pdf-renamer/pkg/types"
)

// ErrUnparseable is returned when a model answer holds no usable JSON object.
var ErrUnparseable = errors.New("unparseable model response")

const tripleSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "author":  {"$ref": "#/definitions/names"},
    "authors": {"$ref": "#/definitions/names"},
    "title":   {"type": ["string", "null"]},
    "pubdate": {"$ref": "#/definitions/date"},
    "date":    {"$ref": "#/definitions/date"},
    "year":    {"$ref": "#/definitions/date"}
  },
  "anyOf": [
    {"required": ["title"]},
    {"required": ["author"]},
    {"required": ["authors"]}
  ],
  "definitions": {
    "names": {
      "anyOf": [
        {"type": ["string", "null"]},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "date": {"type": ["string", "number", "null"]}
  }
}`

var tripleSchema = jsonschema.MustCompileString("triple.schema.json", tripleSchemaJSON)

var (
	fencedObject  = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?")
	trailingFence = regexp.MustCompile("```$")
	outerObject   = regexp.MustCompile(`(?s)\{.*\}`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// placeholders are answers that mean "don't know".
var placeholders = map[string]bool{
	"unknown": true,
	"n/a":     true,
	"na":      true,
	"none":    true,
	"null":    true,
	"":        true,
}

// ParseTriple extracts the triple from a raw model answer. It tolerates code
// fences, prose around the object, single-quoted keys, and trailing commas.
// Missing or placeholder values become types.Unknown; an author of "various"
// is treated as unknown.
func ParseTriple(raw string) (types.Triple, error) {
	content := cleanJSON(raw)
	if content == "" {
		return types.UnknownTriple(), fmt.Errorf("%w: no JSON object in %q", ErrUnparseable, snippet(raw))
	}

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return types.UnknownTriple(), fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if err := tripleSchema.Validate(v); err != nil {
		return types.UnknownTriple(), fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	m := v.(map[string]any)

	author := names(m["author"])
	if author == "" {
		author = names(m["authors"])
	}
	if strings.EqualFold(author, "various") {
		author = ""
	}

	date := scalar(m["pubdate"])
	if date == "" {
		date = scalar(m["date"])
	}
	if date == "" {
		date = scalar(m["year"])
	}

	return types.Triple{
		Author: placeholder(author),
		Title:  placeholder(scalar(m["title"])),
		Date:   placeholder(date),
	}.Normalize(), nil
}

// cleanJSON reduces a model answer to the JSON object it most likely holds.
func cleanJSON(raw string) string {
	content := raw
	if m := fencedObject.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	content = strings.TrimSpace(content)
	content = strings.TrimSpace(leadingFence.ReplaceAllString(content, ""))
	content = strings.TrimSpace(trailingFence.ReplaceAllString(content, ""))

	obj := outerObject.FindString(content)
	if obj == "" {
		return ""
	}
	if !strings.Contains(obj, `"`) {
		obj = strings.ReplaceAll(obj, "'", `"`)
	}
	return trailingComma.ReplaceAllString(obj, "$1")
}

func names(v any) string {
	switch x := v.(type) {
	case []any:
		var parts []string
		for _, p := range x {
			if s := placeholder(scalar(p)); s != types.Unknown {
				parts = append(parts, s)
			}
		}
		switch len(parts) {
		case 0:
			return ""
		case 1:
			return parts[0]
		case 2:
			return parts[0] + " & " + parts[1]
		default:
			return parts[0] + " et al"
		}
	default:
		return scalar(v)
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func placeholder(s string) string {
	if placeholders[strings.ToLower(strings.TrimSpace(s))] {
		return types.Unknown
	}
	return s
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}
