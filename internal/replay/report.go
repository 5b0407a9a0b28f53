package replay

import "gopkg.in/yaml.v3"

// Report is the replayer's result, per spec.md §4.7 step 5.
type Report struct {
	Success       bool     `json:"success" yaml:"success"`
	SavedCount    int      `json:"saved_count" yaml:"saved_count"`
	FilesModified []string `json:"files_modified" yaml:"files_modified"`
	Errors        []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Skipped       []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Conflicts     []string `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// DebugYAML renders the report as YAML for human operators inspecting a
// replay run from a terminal; the canonical wire form (spec.md §6) is
// JSON, produced by the struct tags above via encoding/json.
func (r *Report) DebugYAML() (string, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
