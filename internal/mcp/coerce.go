package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// CoerceBindArguments binds MCP request arguments to a target struct with proper type coercion.
// Some MCP clients send every parameter as a string, including JSON-encoded arrays.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	// jsonStringHook decodes JSON-looking strings into slices, booleans and numbers.
	jsonStringHook := func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return data, nil
		}

		switch {
		case t.Kind() == reflect.Slice && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
			slicePtr := reflect.New(t)
			if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
		case t.Kind() == reflect.Bool && (raw == "true" || raw == "false"):
			return raw == "true", nil
		case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
			var n json.Number
			if err := json.Unmarshal([]byte(raw), &n); err == nil {
				// mapstructure handles the number conversion
				return n, nil
			}
		}

		return data, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json", // Use json tags for field mapping
	})
	if err != nil {
		return err
	}

	return decoder.Decode(request.GetArguments())
}
