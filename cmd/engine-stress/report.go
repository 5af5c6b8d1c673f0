package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/plus3/linker/engine"
)

type Report struct {
	// Configuration
	RunID    string
	Scene    string
	Duration time.Duration
	TickRate time.Duration
	Entities int
	Scripts  []string

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	SpawnTime      time.Duration
	UpdateTime     Stats
	Engine         engine.Stats
	Systems        []engine.SystemStats
	WavesSpawned   int
	ScriptErrors   int
	SnapshotID     string
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Entity Store Stress Report

- **Run ID:** {{.RunID}}

## Configuration
- **Scene:** {{if .Scene}}{{.Scene}}{{else}}(none){{end}}
- **Run Duration:** {{.Duration}}
- **Tick Rate:** {{if .TickRate}}{{.TickRate}}{{else}}unbounded{{end}}
- **Initial Entities:** {{.Entities}}
- **Scripts:** {{if .Scripts}}{{join .Scripts}}{{else}}(none){{end}}

## Entity Store
- **Final Count:** {{.Engine.Count}}
- **Capacity:** {{.Engine.Capacity}} ({{pct .Engine.Utilization}} used)
- **Growth Events:** {{.Engine.GrowthEvents}}
- **Waves Spawned:** {{.WavesSpawned}}
- **Initial Spawn Time:** {{.SpawnTime}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
{{if .Systems}}
## Systems
| System | Executions | Avg | Max |
|---|---|---|---|
{{range .Systems}}| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{end}}- **Script Errors:** {{.ScriptErrors}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}{{if .SnapshotID}}
## Snapshot
- **Saved As:** {{.SnapshotID}}
{{end}}`

var reportFuncs = template.FuncMap{
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
	"join": func(xs []string) string {
		return strings.Join(xs, ", ")
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
