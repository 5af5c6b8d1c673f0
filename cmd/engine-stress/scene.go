package main

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/plus3/linker/jsondoc"
)

// Scene describes the population of a run. Entities < 0 means the scene does
// not set it and the configured count is used.
type Scene struct {
	Name     string
	Entities int
	Waves    []Wave
}

// Wave spawns Count entities once After has elapsed.
type Wave struct {
	After time.Duration
	Count int
}

func loadScene(path string) (*Scene, error) {
	doc, err := jsondoc.Parse(path)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Entities: -1,
	}

	name, err := jsondoc.GetString(doc, "name")
	switch {
	case err == nil:
		scene.Name = name
	case !errors.Is(err, jsondoc.ErrKeyNotFound):
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}

	entities, err := jsondoc.GetNumber(doc, "entities")
	switch {
	case err == nil:
		if scene.Entities, err = count("entities", entities); err != nil {
			return nil, fmt.Errorf("scene %s: %w", path, err)
		}
	case !errors.Is(err, jsondoc.ErrKeyNotFound):
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}

	waves, err := jsondoc.GetArray(doc, "waves")
	switch {
	case err == nil:
		if scene.Waves, err = parseWaves(waves); err != nil {
			return nil, fmt.Errorf("scene %s: %w", path, err)
		}
	case !errors.Is(err, jsondoc.ErrKeyNotFound):
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}

	return scene, nil
}

func parseWaves(arr jsondoc.Array) ([]Wave, error) {
	objects, err := arr.Objects()
	if err != nil {
		return nil, err
	}

	waves := make([]Wave, 0, len(objects))
	for i, obj := range objects {
		after, err := obj.Number("after")
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		if after < 0 || math.IsNaN(after) || math.IsInf(after, 0) {
			return nil, fmt.Errorf("wave %d: after must be a non-negative number of seconds, got %v", i, after)
		}

		n, err := obj.Number("count")
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		c, err := count("count", n)
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}

		waves = append(waves, Wave{
			After: time.Duration(after * float64(time.Second)),
			Count: c,
		})
	}

	slices.SortStableFunc(waves, func(a, b Wave) int {
		return cmp.Compare(a.After, b.After)
	})
	return waves, nil
}

func count(field string, n float64) (int, error) {
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %v", field, n)
	}
	return int(n), nil
}

// waveQueue releases waves in order as simulated time passes.
type waveQueue struct {
	waves []Wave
	next  int
}

// due releases every wave that is due at elapsed and returns how many
// entities they add and how many waves were released.
func (q *waveQueue) due(elapsed time.Duration) (entities, waves int) {
	for q.next < len(q.waves) && q.waves[q.next].After <= elapsed {
		entities += q.waves[q.next].Count
		q.next++
		waves++
	}
	return entities, waves
}
