package handler

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	generateSchema = "generate_request.json"
	parseSchema    = "parse_request.json"
)

// compileSchemas compiles every embedded request schema by file name.
func compileSchemas() (map[string]*jsonschema.Schema, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas dir: %w", err)
	}

	c := jsonschema.NewCompiler()
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", e.Name(), err)
		}
		if err := c.AddResource(schemaURL(e.Name()), doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}

	out := make(map[string]*jsonschema.Schema, len(entries))
	for _, e := range entries {
		s, err := c.Compile(schemaURL(e.Name()))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		out[e.Name()] = s
	}
	return out, nil
}

func schemaURL(name string) string {
	return "schema://papergen/" + name
}
