package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/rowfilter/internal/fingerprint"
	"github.com/roach88/rowfilter/internal/value"
)

// timeLayout stores timestamps as UTC text that sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// marshalTypes stores column types as a canonical JSON array of names.
func marshalTypes(types []value.Type) (string, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	data, err := fingerprint.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal types: %w", err)
	}
	return string(data), nil
}

func unmarshalTypes(data string) ([]value.Type, error) {
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal types: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]value.Type, len(names))
	for i, name := range names {
		t, err := value.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("unmarshal types[%d]: %w", i, err)
		}
		types[i] = t
	}
	return types, nil
}

func marshalTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func unmarshalTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unmarshal time: %w", err)
	}
	return t, nil
}
