package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ManifestEntry represents one job in the output manifest.
type ManifestEntry struct {
	Name       string  `json:"name"`
	Scene      string  `json:"scene"`
	Output     string  `json:"output"`
	Preview    string  `json:"preview,omitempty"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Frames     int     `json:"frames"`
	Success    bool    `json:"success"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Summary counts job outcomes.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Frames    int `json:"frames"`
}

// Manifest is the document written by WriteManifest.
type Manifest struct {
	Summary Summary         `json:"summary"`
	Jobs    []ManifestEntry `json:"jobs"`
}

// Summarize counts the results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
			s.Frames += r.Frames
		} else {
			s.Failed++
		}
	}
	return s
}

// WriteManifest writes the results as indented JSON. Paths are made relative to the
// manifest's directory where possible.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	m := Manifest{Summary: Summarize(results), Jobs: make([]ManifestEntry, len(results))}
	for i, r := range results {
		m.Jobs[i] = ManifestEntry{
			Name:       r.Name,
			Scene:      relTo(dir, r.Scene),
			Output:     relTo(dir, r.Output),
			Preview:    relTo(dir, r.Preview),
			Start:      r.Start,
			End:        r.End,
			Frames:     r.Frames,
			Success:    r.Success,
			Error:      r.Error,
			DurationMS: float64(r.Duration.Microseconds()) / 1000,
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "batch: encode manifest")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "batch: create manifest dir")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "batch: write manifest")
}

func relTo(dir, p string) string {
	if p == "" {
		return ""
	}
	if rel, err := filepath.Rel(dir, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
