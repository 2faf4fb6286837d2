package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// ExpandStrict expands $VAR and ${VAR} through lookup.
//
// Semantics:
//   - `${VAR}` with VAR unset is an error naming every missing variable.
//   - `$VAR` with VAR unset expands to the empty string.
//   - `$$` emits a literal `$`.
func ExpandStrict(s string, lookup LookupEnv) (string, error) {
	const dollarSentinel = "\x00BBS_HEALTH_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	expanded := envVarPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := envVarPattern.FindStringSubmatch(ref)
		key, braced := m[1], true
		if key == "" {
			key, braced = m[2], false
		}
		val, ok := lookup(key)
		if !ok && braced {
			missing[key] = struct{}{}
		}
		return val
	})

	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(keys, ", "))
	}

	return strings.ReplaceAll(expanded, dollarSentinel, "$"), nil
}
