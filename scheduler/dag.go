package scheduler

import "github.com/nimbus-ai/reasoncore/dagtask"

// graph tracks dependency bookkeeping for a fixed set of tasks: which
// tasks a given task depends on, and which ones in turn depend on it.
type graph struct {
	tasks      map[string]dagtask.Task
	dependents map[string][]string
}

func newGraph() *graph {
	return &graph{
		tasks:      make(map[string]dagtask.Task),
		dependents: make(map[string][]string),
	}
}

func (g *graph) add(t dagtask.Task) {
	g.tasks[t.Name] = t
	for _, dep := range t.Dependencies {
		g.dependents[dep] = append(g.dependents[dep], t.Name)
	}
}

// validate reports the first missing dependency found, or nil.
func (g *graph) validate() string {
	for name, t := range g.tasks {
		for _, dep := range t.Dependencies {
			if _, ok := g.tasks[dep]; !ok {
				return name + " depends on undefined task " + dep
			}
		}
	}
	return ""
}

// ready returns the names of tasks in remaining whose dependencies are
// all already present in done (attempted, whether they succeeded or not).
func (g *graph) ready(remaining map[string]dagtask.Task, done map[string]dagtask.TaskResult) []dagtask.Task {
	var out []dagtask.Task
	for name, t := range remaining {
		allDone := true
		for _, dep := range t.Dependencies {
			if _, ok := done[dep]; !ok {
				allDone = false
				break
			}
		}
		if allDone {
			out = append(out, remaining[name])
		}
	}
	return out
}
