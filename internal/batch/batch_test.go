package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstabilize/internal/config"
	"devstabilize/internal/mathutil"
	"devstabilize/internal/preview"
	"devstabilize/internal/retarget"
	"devstabilize/internal/scene"
	"devstabilize/internal/trs"
)

func writeShot(t *testing.T, path string) {
	t.Helper()
	s := scene.New("shot")
	s.PlaybackStart, s.PlaybackEnd = 1, 3
	cam := scene.NewEntity("cam")
	cam.Rest.Rotation = mathutil.Vec3{0, 90, 0}
	cam.Translate.Set(1, mathutil.Vec3{0, 0, 0}, scene.Linear)
	cam.Translate.Set(3, mathutil.Vec3{6, 0, 0}, scene.Linear)
	require.NoError(t, s.Add(cam))
	require.NoError(t, s.Add(scene.NewEntity("world")))
	require.NoError(t, s.Save(path))
}

func intp(v int) *int { return &v }

func TestLoadJobs(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(list, []byte(`
jobs:
  - scene: shots/a.yaml
  - name: b-rot
    scene: /abs/b.yaml
    output: out/b.yaml
    source: cam2
    rotation: true
    start: 4
`), 0o644))

	cfg := config.Config{Source: "cam", Dest: "world", Tangent: "linear", Reassembly: "clean", End: intp(9)}
	jobs, err := LoadJobs(list, cfg)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	a := jobs[0]
	assert.Equal(t, "a.baked", a.Name)
	assert.Equal(t, filepath.Join(dir, "shots", "a.yaml"), a.Scene)
	assert.Equal(t, filepath.Join(dir, "shots", "a.baked.yaml"), a.Output)
	assert.Equal(t, "cam", a.Source)
	assert.Equal(t, "world", a.Dest)
	assert.Nil(t, a.Start)
	assert.Equal(t, 9, *a.End)
	assert.False(t, a.Rotation)
	assert.Equal(t, "linear", a.Tangent)

	b := jobs[1]
	assert.Equal(t, "b-rot", b.Name)
	assert.Equal(t, "/abs/b.yaml", b.Scene)
	assert.Equal(t, filepath.Join(dir, "out", "b.yaml"), b.Output)
	assert.Equal(t, "cam2", b.Source)
	assert.Equal(t, 4, *b.Start)
	assert.True(t, b.Rotation)
}

func TestLoadJobsRejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no scene":       "jobs:\n  - source: a\n    dest: b\n",
		"no dest":        "jobs:\n  - scene: a.yaml\n    source: a\n",
		"same output":    "jobs:\n  - {scene: a.yaml, source: a, dest: b}\n  - {scene: a.yaml, source: c, dest: b}\n",
		"unknown field":  "jobs:\n  - {scene: a.yaml, source: a, dest: b, bogus: 1}\n",
		"not a job list": "- scene: a.yaml\n",
	}
	for name, body := range cases {
		p := filepath.Join(dir, "jobs.yaml")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		_, err := LoadJobs(p, config.Config{})
		assert.Error(t, err, name)
	}
}

func TestFromConfig(t *testing.T) {
	j := FromConfig(config.Config{
		Scene: "/s/shot.yaml", Output: "/s/shot.baked.yaml",
		Source: "cam", Dest: "world", Scale: true, Tangent: "step",
	})
	assert.Equal(t, "shot.baked", j.Name)
	assert.Equal(t, "cam", j.Source)
	assert.True(t, j.Scale)
	assert.Equal(t, "step", j.Tangent)
}

func TestProcessBakesScene(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "shot.yaml")
	writeShot(t, shot)

	before, err := scene.Load(shot)
	require.NoError(t, err)
	camWorld, err := before.WorldMatrix("cam", 2)
	require.NoError(t, err)

	job := Job{
		Name: "shot", Scene: shot, Output: filepath.Join(dir, "out", "shot.yaml"),
		Source: "cam", Dest: "world", Rotation: true, Tangent: "linear",
	}
	res := Process(Config{Preview: true, PreviewDir: filepath.Join(dir, "prev"), PreviewOpts: preview.Options{Size: 32}}, job)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 1, res.Start)
	assert.Equal(t, 3, res.End)
	assert.Equal(t, 3, res.Frames)
	assert.FileExists(t, res.Preview)
	assert.Equal(t, ".webp", filepath.Ext(res.Preview))

	after, err := scene.Load(job.Output)
	require.NoError(t, err)
	cam, _ := after.Entity("cam")
	world, _ := after.Entity("world")
	require.Len(t, cam.Translate.Keys, 3)
	require.Len(t, world.Rotate.Keys, 3)
	assert.True(t, world.Scale.Empty())
	for _, k := range world.Translate.Keys {
		assert.Equal(t, scene.Linear, k.In)
		assert.Equal(t, scene.Linear, k.Out)
	}

	local, err := after.Local("cam", 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, local.Translation[:], 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, local.Rotation[:], 1e-9)

	dw, err := after.WorldMatrix("world", 2)
	require.NoError(t, err)
	assert.True(t, mathutil.ApproxEqual(dw.Mul4(camWorld), mgl64.Ident4(), 1e-8))

	// the input file is untouched
	again, err := scene.Load(shot)
	require.NoError(t, err)
	orig, _ := again.Entity("cam")
	assert.Len(t, orig.Translate.Keys, 2)
}

func TestProcessReportsFailures(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "shot.yaml")
	writeShot(t, shot)

	for name, job := range map[string]Job{
		"missing scene":  {Scene: filepath.Join(dir, "nope.yaml"), Source: "cam", Dest: "world"},
		"missing entity": {Scene: shot, Source: "ghost", Dest: "world"},
		"reversed range": {Scene: shot, Source: "cam", Dest: "world", Start: intp(5), End: intp(2)},
		"bad tangent":    {Scene: shot, Source: "cam", Dest: "world", Tangent: "bezier"},
		"bad reassembly": {Scene: shot, Source: "cam", Dest: "world", Reassembly: "fancy"},
	} {
		job.Name = name
		job.Output = filepath.Join(dir, "out.yaml")
		res := Process(Config{}, job)
		assert.False(t, res.Success, name)
		assert.NotEmpty(t, res.Error, name)
		assert.NoFileExists(t, job.Output, name)
	}
}

func bakeScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New("bake")
	cam := scene.NewEntity("cam")
	cam.Translate.Set(1, mathutil.Vec3{1, 0, 0}, scene.Flat)
	cam.Translate.Set(3, mathutil.Vec3{3, 0, 0}, scene.Flat)
	require.NoError(t, s.Add(cam))
	require.NoError(t, s.Add(scene.NewEntity("world")))
	return s
}

// keyCounts returns translate, rotate and scale key counts of an entity.
func keyCounts(t *testing.T, s *scene.Scene, id string) [3]int {
	t.Helper()
	e, ok := s.Entity(id)
	require.True(t, ok, id)
	return [3]int{len(e.Translate.Keys), len(e.Rotate.Keys), len(e.Scale.Keys)}
}

func TestBakeFailuresLeaveSceneUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *scene.Scene)
		req   retarget.Request
		kind  error
	}{
		{
			name:  "locked source channel",
			setup: func(s *scene.Scene) { e, _ := s.Entity("cam"); e.Locked = trs.Rotate },
			req:   retarget.Request{Source: "cam", Dest: "world", Start: 1, End: 3, Rotation: true},
			kind:  scene.ErrLocked,
		},
		{
			name: "source is destination",
			req:  retarget.Request{Source: "cam", Dest: "cam", Start: 1, End: 3},
			kind: retarget.ErrInvalidArgument,
		},
		{
			name: "degenerate frame",
			setup: func(s *scene.Scene) {
				e, _ := s.Entity("cam")
				e.Scale.Set(1, mathutil.One, scene.Flat)
				e.Scale.Set(2, mathutil.Vec3{0, 1, 1}, scene.Flat)
			},
			req:  retarget.Request{Source: "cam", Dest: "world", Start: 1, End: 2, Rotation: true},
			kind: retarget.ErrDegenerateTransform,
		},
		{
			name: "missing entity",
			req:  retarget.Request{Source: "cam", Dest: "ghost", Start: 1, End: 3},
			kind: retarget.ErrEntityNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := bakeScene(t)
			if tt.setup != nil {
				tt.setup(s)
			}
			camBefore, worldBefore := keyCounts(t, s, "cam"), keyCounts(t, s, "world")
			require.NoError(t, s.SetCurrentTime(7))

			_, err := Bake(s, tt.req, scene.Linear)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			assert.Equal(t, camBefore, keyCounts(t, s, "cam"))
			assert.Equal(t, worldBefore, keyCounts(t, s, "world"))
			assert.Equal(t, 7, s.CurrentTime())
			cam, _ := s.Entity("cam")
			for _, k := range cam.Translate.Keys {
				assert.Equal(t, scene.Flat, k.Out, "frame %d", k.Frame)
			}
		})
	}
}

func TestBakeFillsAndSetsTangentsInOneBoundary(t *testing.T) {
	s := bakeScene(t)
	samples, err := Bake(s, retarget.Request{Source: "cam", Dest: "world", Start: 1, End: 3}, scene.Step)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, [3]int{3, 0, 0}, keyCounts(t, s, "cam"))
	assert.Equal(t, [3]int{3, 0, 0}, keyCounts(t, s, "world"))
	world, _ := s.Entity("world")
	for _, k := range world.Translate.Keys {
		assert.Equal(t, scene.Step, k.In)
	}

	// the boundary was committed, so a new one can open
	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
}

func TestRunAndManifest(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for _, name := range []string{"a", "b", "c"} {
		p := filepath.Join(dir, name+".yaml")
		writeShot(t, p)
		jobs = append(jobs, Job{
			Name: name, Scene: p, Output: filepath.Join(dir, "out", name+".yaml"),
			Source: "cam", Dest: "world", Tangent: "linear",
		})
	}
	jobs = append(jobs, Job{Name: "bad", Scene: filepath.Join(dir, "a.yaml"), Output: filepath.Join(dir, "out", "bad.yaml"), Source: "nobody", Dest: "world"})

	results := Run(Config{Workers: 2, Progress: -1}, jobs)
	require.Len(t, results, 4)
	for i, r := range results[:3] {
		assert.True(t, r.Success, "%s: %s", jobs[i].Name, r.Error)
		assert.Equal(t, jobs[i].Name, r.Name)
	}
	assert.False(t, results[3].Success)

	sum := Summarize(results)
	assert.Equal(t, Summary{Total: 4, Succeeded: 3, Failed: 1, Frames: 9}, sum)

	manifest := filepath.Join(dir, "out", "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, sum, m.Summary)
	require.Len(t, m.Jobs, 4)
	assert.Equal(t, "a.yaml", m.Jobs[0].Output)
	assert.Equal(t, "../a.yaml", m.Jobs[0].Scene)
	assert.Contains(t, m.Jobs[3].Error, "entity not found")
}
