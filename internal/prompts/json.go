package prompts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadJSON reads a prompt list from a file containing a JSON array of
// strings. Blank entries are rejected rather than silently skipped so a
// broken prompt file fails loudly before a sweep starts.
func LoadJSON(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prompts file: %w", err)
	}
	defer file.Close()

	var prompts []string
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&prompts); err != nil {
		return nil, fmt.Errorf("decode prompts file: %w", err)
	}

	if len(prompts) == 0 {
		return nil, fmt.Errorf("prompts file contains an empty array")
	}
	for i, prompt := range prompts {
		if strings.TrimSpace(prompt) == "" {
			return nil, fmt.Errorf("prompt %d is empty", i)
		}
	}
	return prompts, nil
}
