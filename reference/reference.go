// Package reference holds the meshes that model entities are matched against.
// A mesh is picked only by its vertex count, so the library indexes models by it.
package reference

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/utils"
	"github.com/mogaika/msl_browser/vfs"
)

type Vertex struct {
	Location mgl32.Vec3
	Bone     int // always the root frame
}

// Model is the first mesh of a reference file, unrolled to three vertices per triangle.
type Model struct {
	Path     string
	Vertices []Vertex
}

func (m *Model) Name() string {
	return utils.BaseNameNoExt(m.Path)
}

func (m *Model) Locations() []mgl32.Vec3 {
	r := make([]mgl32.Vec3, len(m.Vertices))
	for i := range m.Vertices {
		r[i] = m.Vertices[i].Location
	}
	return r
}

type Predicate func(path string) bool

type Resolver func(path string) (*Model, error)

type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load reference %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Outcome records what happened to one candidate file.
type Outcome struct {
	Path  string
	Model *Model
	Err   error
}

func (o Outcome) Loaded() bool { return o.Err == nil && o.Model != nil }

// Source describes where reference models come from. Paths are tried first,
// then every file of Dirs accepted by CanLoad.
type Source struct {
	Paths   []string
	Dirs    []string
	CanLoad Predicate
	Resolve Resolver
}

// DefaultSource resolves glTF files from dirs.
func DefaultSource(dirs []string) *Source {
	return &Source{Dirs: dirs, CanLoad: CanLoadGLTF, Resolve: LoadGLTF}
}

type Library struct {
	Outcomes []Outcome

	byCount  map[int][]*Model
	released bool
}

// Load resolves every candidate. Failures are recorded as outcomes and never stop
// loading the rest.
func (s *Source) Load() *Library {
	l := &Library{byCount: make(map[int][]*Model)}

	paths := make([]string, 0, len(s.Paths))
	for _, p := range s.Paths {
		if s.CanLoad == nil || s.CanLoad(p) {
			paths = append(paths, p)
		}
	}
	for _, dir := range s.Dirs {
		files, err := vfs.ListFiles(vfs.NewDirectoryDriver(dir), func(name string) bool {
			return s.CanLoad == nil || s.CanLoad(name)
		})
		if err != nil {
			l.add(Outcome{Path: dir, Err: &LoadError{Path: dir, Err: err}})
			continue
		}
		for _, f := range files {
			paths = append(paths, f.Path())
		}
	}

	for _, p := range paths {
		l.add(resolve(s.Resolve, p))
	}
	return l
}

func resolve(r Resolver, path string) (o Outcome) {
	o.Path = path
	defer func() {
		if rec := recover(); rec != nil {
			o.Model = nil
			o.Err = &LoadError{Path: path, Err: errors.Errorf("panic: %v", rec)}
		}
	}()

	if r == nil {
		o.Err = &LoadError{Path: path, Err: errors.Errorf("no resolver")}
		return o
	}
	m, err := r(path)
	if err != nil {
		o.Err = &LoadError{Path: path, Err: err}
	} else if m == nil || len(m.Vertices) == 0 {
		o.Err = &LoadError{Path: path, Err: errors.Errorf("no mesh")}
	} else {
		o.Model = m
	}
	return o
}

func (l *Library) add(o Outcome) {
	if o.Loaded() {
		n := len(o.Model.Vertices)
		l.byCount[n] = append(l.byCount[n], o.Model)
	} else {
		log.Printf("[reference] %v", o.Err)
	}
	l.Outcomes = append(l.Outcomes, o)
}

// Candidates returns the models with exactly vertexCount vertices in load order.
func (l *Library) Candidates(vertexCount int) []*Model {
	if l == nil || l.released {
		return nil
	}
	return l.byCount[vertexCount]
}

func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, models := range l.byCount {
		n += len(models)
	}
	return n
}

// Release drops every loaded mesh. Outcomes stay for reporting.
func (l *Library) Release() {
	if l == nil || l.released {
		return
	}
	l.byCount = nil
	for i := range l.Outcomes {
		l.Outcomes[i].Model = nil
	}
	l.released = true
}

func (l *Library) Released() bool {
	return l != nil && l.released
}
