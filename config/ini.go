package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// loadINI reads the file at path into the nested map shape viper merges.
// Section and key names are lower-cased; keys must live inside a section.
func loadINI(path string) (map[string]any, error) {
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	root := file.Section(ini.DefaultSection)
	if keys := root.KeyStrings(); len(keys) > 0 {
		return nil, fmt.Errorf("%w: key %q outside of a section", ErrInvalidConfig, keys[0])
	}

	out := make(map[string]any)
	for _, section := range file.Sections() {
		if section == root {
			continue
		}
		values := make(map[string]any)
		for key, value := range section.KeysHash() {
			values[key] = value
		}
		out[section.Name()] = values
	}
	return out, nil
}
