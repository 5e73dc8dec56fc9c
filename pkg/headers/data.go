package headers

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadBrowserList reads the unique-browsers data file: a JSON array of
// browser-identifier strings in the shape "name/dottedVersion|httpVersion".
func LoadBrowserList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read browser list: %w", err)
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse browser list %s: %w", path, err)
	}
	return list, nil
}

// LoadHeaderOrder reads the per-browser header order table: a JSON object
// mapping a browser family to its header names in emission order.
func LoadHeaderOrder(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read header order table: %w", err)
	}
	var order map[string][]string
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to parse header order table %s: %w", path, err)
	}
	return order, nil
}
