package config

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "version": {"type": "integer", "minimum": 1, "maximum": 1},
    "output": {
      "type": "object",
      "properties": {
        "dir": {"type": "string"},
        "suffix": {"type": "string", "minLength": 1}
      }
    },
    "batch": {
      "type": "object",
      "properties": {
        "include": {
          "type": "array",
          "items": {"type": "string", "minLength": 1}
        }
      }
    },
    "report": {
      "type": "object",
      "properties": {
        "path": {"type": "string"}
      }
    }
  }
}`

func compileConfigSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("config.schema.json", strings.NewReader(configSchema)); err != nil {
		return nil, err
	}
	return c.Compile("config.schema.json")
}

// validate round-trips cfg through JSON so the schema sees the same shape
// a JSON config file would have.
func validate(cfg *File) error {
	sch, err := compileConfigSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return sch.Validate(v)
}
