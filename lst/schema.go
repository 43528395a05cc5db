package lst

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidUnit is returned by Load for documents that don't match the unit schema.
var ErrInvalidUnit = errors.New("invalid unit")

const schemaFile = "unit.schema.json"

// Schema describes the JSON form of a unit.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "unit",
  "$ref": "#/$defs/unit",
  "$defs": {
    "id": {
      "type": "string",
      "pattern": "^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$"
    },
    "pos": {
      "type": "object",
      "properties": {
        "line": {"type": "integer", "minimum": 0},
        "column": {"type": "integer", "minimum": 0}
      },
      "required": ["line", "column"],
      "additionalProperties": false
    },
    "style": {
      "type": "object",
      "properties": {
        "indent": {"type": "integer", "minimum": 0},
        "tabs": {"type": "boolean"}
      },
      "required": ["indent", "tabs"],
      "additionalProperties": false
    },
    "typeref": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "name": {"type": "string"}
      },
      "required": ["id", "name"],
      "additionalProperties": false
    },
    "ident": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "name": {"type": "string"},
        "type": {"$ref": "#/$defs/typeref"},
        "pos": {"$ref": "#/$defs/pos"}
      },
      "required": ["id", "name", "pos"],
      "additionalProperties": false
    },
    "literal": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "value": {"type": "string"},
        "pos": {"$ref": "#/$defs/pos"}
      },
      "required": ["id", "value", "pos"],
      "additionalProperties": false
    },
    "binary": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "op": {"enum": ["+", "-", "*", "/"]},
        "left": {"$ref": "#/$defs/expr"},
        "right": {"$ref": "#/$defs/expr"},
        "pos": {"$ref": "#/$defs/pos"}
      },
      "required": ["id", "op", "pos"],
      "additionalProperties": false
    },
    "expr": {
      "type": "object",
      "properties": {
        "ident": {"$ref": "#/$defs/ident"},
        "literal": {"$ref": "#/$defs/literal"},
        "binary": {"$ref": "#/$defs/binary"}
      },
      "minProperties": 1,
      "maxProperties": 1,
      "additionalProperties": false
    },
    "func": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "name": {"type": "string"},
        "visibility": {"enum": ["private", "public"]},
        "params": {"type": "array", "items": {"$ref": "#/$defs/ident"}},
        "result": {"$ref": "#/$defs/typeref"},
        "body": {"type": "array", "items": {"$ref": "#/$defs/expr"}},
        "pos": {"$ref": "#/$defs/pos"}
      },
      "required": ["id", "name", "visibility", "pos"],
      "additionalProperties": false
    },
    "unit": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "name": {"type": "string"},
        "style": {"$ref": "#/$defs/style"},
        "decls": {"type": "array", "items": {"$ref": "#/$defs/func"}}
      },
      "required": ["id", "name"],
      "additionalProperties": false
    }
  }
}`

var unitSchema = jsonschema.MustCompileString(schemaFile, Schema)

// ValidateSchema checks a JSON document against the unit schema.
func ValidateSchema(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal unit data: %w", err)
	}
	if err := unitSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUnit, err)
	}
	return nil
}
