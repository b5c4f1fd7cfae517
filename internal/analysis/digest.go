// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"encoding/json"
	"errors"
	"strings"
)

// Digest is the decoded analysis output.
type Digest struct {
	Summary string `json:"summary"`
	Tree    string `json:"tree"`
	Content string `json:"content"`
}

// ParseDigest decodes the analysis script output. All three fields must be
// present and be strings.
func ParseDigest(output string) (*Digest, error) {
	var raw struct {
		Summary *string `json:"summary"`
		Tree    *string `json:"tree"`
		Content *string `json:"content"`
	}
	dec := json.NewDecoder(strings.NewReader(output))
	if err := dec.Decode(&raw); err != nil {
		return nil, &OutputParseError{Err: err}
	}

	var missing []string
	if raw.Summary == nil {
		missing = append(missing, "summary")
	}
	if raw.Tree == nil {
		missing = append(missing, "tree")
	}
	if raw.Content == nil {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, &OutputParseError{Err: errors.New("missing fields: " + strings.Join(missing, ", "))}
	}

	return &Digest{Summary: *raw.Summary, Tree: *raw.Tree, Content: *raw.Content}, nil
}
