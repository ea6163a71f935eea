package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// Parse reads an exported task list back. Only json and yaml carry enough
// structure to import.
func Parse(data []byte, format string) ([]tasks.Task, error) {
	switch strings.ToLower(format) {
	case "json":
		var list []tasks.Task
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return list, nil
	case "yaml", "yml":
		var docs []yamlTask
		if err := yaml.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		list := make([]tasks.Task, 0, len(docs))
		for _, d := range docs {
			list = append(list, fromYAMLTask(d))
		}
		return list, nil
	default:
		return nil, fmt.Errorf("cannot import format %q", format)
	}
}

// DetectFormat guesses the interchange format from a file name. Unknown
// extensions default to json.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	case ".md", ".markdown":
		return "markdown"
	case ".pdf":
		return "pdf"
	default:
		return "json"
	}
}
