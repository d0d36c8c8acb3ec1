package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"job.json": `{"scene": "shot.yaml", "source": "cam", "dest": "world", "start": 3, "rotation": true,
			"preview": {"enabled": true, "view": "front"}}`,
		"job.toml": "scene = \"shot.yaml\"\nsource = \"cam\"\ndest = \"world\"\nstart = 3\nrotation = true\n" +
			"[preview]\nenabled = true\nview = \"front\"\n",
		"job.yaml": "scene: shot.yaml\nsource: cam\ndest: world\nstart: 3\nrotation: true\n" +
			"preview:\n  enabled: true\n  view: front\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, dir, name, body))
			require.NoError(t, err)

			assert.Equal(t, dir, cfg.BaseDir)
			assert.Equal(t, "shot.yaml", cfg.Scene)
			assert.Equal(t, "cam", cfg.Source)
			assert.Equal(t, "world", cfg.Dest)
			require.NotNil(t, cfg.Start)
			assert.Equal(t, 3, *cfg.Start)
			assert.Nil(t, cfg.End)
			assert.True(t, cfg.Rotation)
			assert.False(t, cfg.Scale)
			assert.True(t, cfg.Preview.Enabled)
			assert.Equal(t, "front", cfg.Preview.View)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "job.ini", "scene=x"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = Load(writeFile(t, dir, "bad.json", "{"))
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	cfg := Config{BaseDir: "/data", Scene: "shots/a.yaml"}
	cfg.Resolve(Flags{})

	assert.Equal(t, filepath.Join("/data", "shots", "a.yaml"), cfg.Scene)
	assert.Equal(t, filepath.Join("/data", "shots", "a.baked.yaml"), cfg.Output)
	assert.Equal(t, filepath.Join("/data", "shots", "preview"), cfg.Preview.Dir)
	assert.Equal(t, "clean", cfg.Reassembly)
	assert.Equal(t, "linear", cfg.Tangent)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 512, cfg.Preview.Size)
	assert.Equal(t, 2, cfg.Preview.Supersample)
	assert.Equal(t, "webp", cfg.Preview.Format)
	assert.Equal(t, "top", cfg.Preview.View)
	assert.False(t, cfg.Preview.Enabled)
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	start, end := 10, 20
	cfg := Config{
		Scene:      "/abs/a.yaml",
		Source:     "cam",
		Dest:       "world",
		Reassembly: "legacy",
		Workers:    2,
	}
	cfg.Resolve(Flags{
		Source:     "cam2",
		Start:      &start,
		End:        &end,
		Scale:      true,
		Workers:    8,
		PreviewDir: "/tmp/prev",
		Format:     "tga",
	})

	assert.Equal(t, "/abs/a.yaml", cfg.Scene)
	assert.Equal(t, "cam2", cfg.Source)
	assert.Equal(t, "world", cfg.Dest)
	assert.Equal(t, 10, *cfg.Start)
	assert.Equal(t, 20, *cfg.End)
	assert.True(t, cfg.Scale)
	assert.False(t, cfg.Rotation)
	assert.Equal(t, "legacy", cfg.Reassembly)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Preview.Enabled)
	assert.Equal(t, "/tmp/prev", cfg.Preview.Dir)
	assert.Equal(t, "tga", cfg.Preview.Format)
}

func TestResolveAnchorsOnlyFilePaths(t *testing.T) {
	cfg := Config{BaseDir: "/data", Scene: "shots/file.yaml", Jobs: "jobs.yaml", Preview: Preview{Plate: "plate.png"}}
	cfg.Resolve(Flags{Scene: "shots/a.yaml", Output: "out/a.yaml", Plate: "bg.png"})

	assert.Equal(t, "shots/a.yaml", cfg.Scene)
	assert.Equal(t, "out/a.yaml", cfg.Output)
	assert.Equal(t, "bg.png", cfg.Preview.Plate)
	assert.Equal(t, filepath.Join("/data", "jobs.yaml"), cfg.Jobs)
	assert.Equal(t, filepath.Join("out", "preview"), cfg.Preview.Dir)
}

func TestValidate(t *testing.T) {
	start, end := 5, 1
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"complete", Config{Scene: "a.yaml", Source: "a", Dest: "b"}, true},
		{"jobs only", Config{Jobs: "jobs.yaml"}, true},
		{"no scene", Config{Source: "a", Dest: "b"}, false},
		{"no dest", Config{Scene: "a.yaml", Source: "a"}, false},
		{"reversed", Config{Scene: "a.yaml", Source: "a", Dest: "b", Start: &start, End: &end}, false},
		{"format", Config{Scene: "a.yaml", Source: "a", Dest: "b", Preview: Preview{Format: "png"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Resolve(Flags{})
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBakedPath(t *testing.T) {
	assert.Equal(t, "shot.baked.yaml", BakedPath("shot.yaml"))
	assert.Equal(t, "dir/shot.baked", BakedPath("dir/shot"))
}
