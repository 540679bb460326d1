package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

// ValidationWarning represents a configuration warning for an unknown or
// potentially misspelled key.
type ValidationWarning struct {
	Key         string
	Suggestions []string
}

func (w ValidationWarning) String() string {
	msg := fmt.Sprintf("'%s' is not a known config key", w.Key)
	if len(w.Suggestions) == 1 {
		msg += fmt.Sprintf(". Did you mean '%s'?", w.Suggestions[0])
	} else if len(w.Suggestions) > 1 {
		msg += ". Did you mean one of these?\n"
		for _, suggestion := range w.Suggestions {
			msg += fmt.Sprintf("    - %s\n", suggestion)
		}
	}
	return msg
}

// ValidateConfigKeys checks all loaded configuration keys against the
// registry and returns warnings for unknown keys with suggestions for
// similar keys. Keys under a registered namespace are not warned about, so
// nested policy mappings stay open-ended.
func ValidateConfigKeys(config *koanf.Koanf) []ValidationWarning {
	var warnings []ValidationWarning

	for _, key := range config.Keys() {
		if _, exists := LookupConfigKey(key); exists {
			continue
		}
		if HasRegisteredPrefix(key) {
			continue
		}
		warnings = append(warnings, ValidationWarning{
			Key:         key,
			Suggestions: FindSimilarKeys(key, 3),
		})
	}

	return warnings
}
