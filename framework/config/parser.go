package config

import (
	"encoding/json"
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// ParseJSONOrYAML is used in the same way as json.Unmarshal, but if the data is YAML and not
// JSON, it will convert the YAML to JSON and then parse it as JSON.
func ParseJSONOrYAML(data []byte, target interface{}) error {
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}
	var rawStructure interface{}
	if err := yaml.Unmarshal(data, &rawStructure); err != nil {
		return err
	}
	normalized, err := normalizeYAML(rawStructure)
	if err != nil {
		return err
	}
	jsonData, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}

// normalizeYAML converts the generic maps produced by yaml.v3 into a form that
// json.Marshal accepts.
func normalizeYAML(data interface{}) (interface{}, error) {
	switch data := data.(type) {
	case []interface{}:
		out := make([]interface{}, 0, len(data))
		for _, v := range data {
			v1, err := normalizeYAML(v)
			if err != nil {
				return nil, err
			}
			out = append(out, v1)
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(data))
		for k, v := range data {
			v1, err := normalizeYAML(v)
			if err != nil {
				return nil, err
			}
			out[k] = v1
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(data))
		for k, v := range data {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("config file contains a map key of type %T; only string keys are allowed", k)
			}
			v1, err := normalizeYAML(v)
			if err != nil {
				return nil, err
			}
			out[key] = v1
		}
		return out, nil
	default:
		return data, nil
	}
}
