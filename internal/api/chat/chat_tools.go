package chat

import (
	"bytes"
	"encoding/json"

	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// ToolSpec declares one capability to the model and knows how to decode the
// arguments the model sends back for it.
type ToolSpec struct {
	Name        types.ToolName
	Description string
	Parameters  *genai.Schema
	decode      func(raw []byte) (types.ToolInvocation, error)
}

// ToolSet is the set of tools declared on one routing call.
type ToolSet []ToolSpec

func PlacesSearchTool() ToolSpec {
	return ToolSpec{
		Name:        types.ToolSearchPlaces,
		Description: "Search for places like restaurants, hotels, and attractions.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "Free text search, e.g. 'restaurants in Los Angeles'",
				},
			},
			Required: []string{"query"},
		},
		decode: decodeArgs[types.PlacesSearchArgs],
	}
}

func WeatherLookupTool() ToolSpec {
	return ToolSpec{
		Name:        types.ToolGetWeather,
		Description: "Provides current weather information for a given location.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"location": {
					Type:        genai.TypeString,
					Description: "City name, e.g. 'Paris'",
				},
			},
			Required: []string{"location"},
		},
		decode: decodeArgs[types.WeatherLookupArgs],
	}
}

func (s ToolSet) Lookup(name string) (ToolSpec, bool) {
	for _, spec := range s {
		if string(spec.Name) == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

func (s ToolSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, spec := range s {
		names = append(names, string(spec.Name))
	}
	return names
}

func (s ToolSet) genaiTools() []*genai.Tool {
	if len(s) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(s))
	for _, spec := range s {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        string(spec.Name),
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Decode turns model-supplied arguments into the tool's invocation type.
// Unknown keys and failed validation tags are both rejected.
func (t ToolSpec) Decode(args map[string]any) (types.ToolInvocation, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, types.ValidationError("arguments for %s are not valid JSON: %v", t.Name, err)
	}
	return t.decode(raw)
}

func decodeArgs[T types.ToolInvocation](raw []byte) (types.ToolInvocation, error) {
	var args T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return nil, types.ValidationError("invalid arguments for %s: %v", args.ToolName(), err)
	}
	if err := api.Validate(args); err != nil {
		return nil, types.ValidationError("invalid arguments for %s: %v", args.ToolName(), err)
	}
	return args, nil
}
