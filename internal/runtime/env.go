// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"maps"
	"slices"

	"github.com/joho/godotenv"
)

// LoadEnvFiles reads dotenv files in order and returns sorted KEY=VALUE pairs.
// Keys in later files override earlier ones.
func LoadEnvFiles(paths ...string) ([]string, error) {
	merged := make(map[string]string)
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
		maps.Copy(merged, vars)
	}

	env := make([]string, 0, len(merged))
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		env = append(env, key+"="+merged[key])
	}
	return env, nil
}
