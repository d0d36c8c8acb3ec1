package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"devstabilize/internal/config"
)

// Job is one retarget of a scene file.
type Job struct {
	Name       string `yaml:"name" json:"name"`
	Scene      string `yaml:"scene" json:"scene"`
	Output     string `yaml:"output" json:"output"`
	Source     string `yaml:"source" json:"source"`
	Dest       string `yaml:"dest" json:"dest"`
	Start      *int   `yaml:"start" json:"start,omitempty"`
	End        *int   `yaml:"end" json:"end,omitempty"`
	Rotation   bool   `yaml:"rotation" json:"rotation"`
	Scale      bool   `yaml:"scale" json:"scale"`
	Reassembly string `yaml:"reassembly" json:"reassembly"`
	Tangent    string `yaml:"tangent" json:"tangent"`
}

type jobsFile struct {
	Jobs []Job `yaml:"jobs"`
}

// FromConfig builds the single job described by a resolved config.
func FromConfig(cfg config.Config) Job {
	j := Job{Scene: cfg.Scene, Output: cfg.Output}
	j.inherit(cfg)
	j.Name = defaultName(j, 0)
	return j
}

// LoadJobs reads a YAML job list. Relative paths are anchored at the list's directory,
// and fields a job leaves empty are taken from cfg.
func LoadJobs(path string, cfg config.Config) ([]Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "batch: open job list")
	}
	defer f.Close()

	var jf jobsFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&jf); err != nil {
		return nil, errors.Wrapf(err, "batch: parse %s", path)
	}

	base := filepath.Dir(path)
	outputs := map[string]string{}
	for i := range jf.Jobs {
		j := &jf.Jobs[i]
		if j.Scene == "" {
			return nil, errors.Errorf("batch: job %d has no scene", i+1)
		}
		if !filepath.IsAbs(j.Scene) {
			j.Scene = filepath.Join(base, j.Scene)
		}
		if j.Output == "" {
			j.Output = config.BakedPath(j.Scene)
		} else if !filepath.IsAbs(j.Output) {
			j.Output = filepath.Join(base, j.Output)
		}
		j.inherit(cfg)
		j.Name = defaultName(*j, i)

		if j.Source == "" || j.Dest == "" {
			return nil, errors.Errorf("batch: job %q needs source and dest", j.Name)
		}
		if prev, ok := outputs[j.Output]; ok {
			return nil, errors.Errorf("batch: jobs %q and %q both write %s", prev, j.Name, j.Output)
		}
		outputs[j.Output] = j.Name
	}
	return jf.Jobs, nil
}

func (j *Job) inherit(cfg config.Config) {
	if j.Source == "" {
		j.Source = cfg.Source
	}
	if j.Dest == "" {
		j.Dest = cfg.Dest
	}
	if j.Start == nil {
		j.Start = cfg.Start
	}
	if j.End == nil {
		j.End = cfg.End
	}
	j.Rotation = j.Rotation || cfg.Rotation
	j.Scale = j.Scale || cfg.Scale
	if j.Reassembly == "" {
		j.Reassembly = cfg.Reassembly
	}
	if j.Tangent == "" {
		j.Tangent = cfg.Tangent
	}
}

func defaultName(j Job, i int) string {
	if j.Name != "" {
		return j.Name
	}
	src := j.Output
	if src == "" {
		src = j.Scene
	}
	base := filepath.Base(src)
	if base == "." || base == "" {
		return fmt.Sprintf("job%d", i+1)
	}
	return base[:len(base)-len(filepath.Ext(base))]
}
