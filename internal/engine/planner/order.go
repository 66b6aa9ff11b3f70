package planner

import (
	"container/heap"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
)

// Order computes the blueprint for top: the closure of top ordered file by
// file so that every file follows the files it depends on. Files that are
// free to go in either order keep their discovery order.
func Order(g *domain.Graph, top domain.UnitKey, arch domain.Identifier) (*domain.Blueprint, error) {
	units, err := g.Closure(top, arch)
	if err != nil {
		return nil, err
	}
	if err := g.DetectCyclesIn(units); err != nil {
		return nil, err
	}

	fg := newFileGraph(g, units)
	order, err := fg.sort()
	if err != nil {
		return nil, err
	}

	sim := simulationUnits(g, top, arch, units)
	bp := &domain.Blueprint{Top: top}
	for _, i := range order {
		for _, u := range fg.files[i].units {
			role := domain.RoleDesign
			if sim[u.Key] {
				role = domain.RoleSimulation
			}
			bp.Entries = append(bp.Entries, domain.BlueprintEntry{
				File:    u.File,
				Library: u.Key.Library,
				Unit:    u.Key,
				Kind:    u.Kind,
				Dialect: u.Dialect,
				Role:    role,
			})
		}
	}
	return bp, nil
}

type fileNode struct {
	path  string
	units []*domain.DesignUnit
}

// fileGraph is the closure collapsed to files. Node indices follow
// discovery order, so the smallest index is the earliest discovered file.
type fileGraph struct {
	files []fileNode
	// succ[i] lists the files that must come after file i.
	succ  []map[int]struct{}
	indeg []int
}

func newFileGraph(g *domain.Graph, units []*domain.DesignUnit) *fileGraph {
	fg := &fileGraph{}
	index := make(map[string]int)
	for _, u := range units {
		i, ok := index[u.File]
		if !ok {
			i = len(fg.files)
			index[u.File] = i
			fg.files = append(fg.files, fileNode{path: u.File})
		}
		fg.files[i].units = append(fg.files[i].units, u)
	}

	fg.succ = make([]map[int]struct{}, len(fg.files))
	fg.indeg = make([]int, len(fg.files))
	for _, u := range units {
		from := index[u.File]
		for _, e := range g.Edges(u.Key) {
			dep, ok := g.Unit(e.To)
			if !ok {
				continue
			}
			to, ok := index[dep.File]
			if !ok || to == from {
				continue
			}
			if fg.succ[to] == nil {
				fg.succ[to] = make(map[int]struct{})
			}
			if _, dup := fg.succ[to][from]; dup {
				continue
			}
			fg.succ[to][from] = struct{}{}
			fg.indeg[from]++
		}
	}
	return fg
}

// sort runs Kahn's algorithm, always emitting the earliest discovered
// ready file.
func (fg *fileGraph) sort() ([]int, error) {
	indeg := append([]int(nil), fg.indeg...)
	h := &minHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(h, i)
		}
	}

	order := make([]int, 0, len(fg.files))
	for h.Len() > 0 {
		i := heap.Pop(h).(int)
		order = append(order, i)
		for j := range fg.succ[i] {
			indeg[j]--
			if indeg[j] == 0 {
				heap.Push(h, j)
			}
		}
	}

	if len(order) < len(fg.files) {
		return nil, fg.cycle(indeg)
	}
	return order, nil
}

// cycle reports a file cycle among the files Kahn could not emit. Units
// can be acyclic while their files are not, when one file holds units on
// both ends of a dependency chain through another file.
func (fg *fileGraph) cycle(indeg []int) error {
	state := make([]int, len(fg.files)) // 0: white, 1: gray, 2: black
	var path []int

	var visit func(i int) []int
	visit = func(i int) []int {
		state[i] = 1
		path = append(path, i)
		for _, j := range slices.Sorted(maps.Keys(fg.succ[i])) {
			if indeg[j] == 0 {
				continue
			}
			switch state[j] {
			case 1:
				for k, p := range path {
					if p == j {
						return append(path[k:], j)
					}
				}
			case 0:
				if c := visit(j); c != nil {
					return c
				}
			}
		}
		state[i] = 2
		path = path[:len(path)-1]
		return nil
	}

	for i, d := range indeg {
		if d == 0 || state[i] != 0 {
			continue
		}
		if c := visit(i); c != nil {
			// succ points from prerequisite to dependent; report the
			// dependency direction like unit cycles do.
			parts := make([]string, len(c))
			for k, n := range c {
				parts[len(c)-1-k] = fg.files[n].path
			}
			return domain.Fail(domain.ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
		}
	}
	return domain.Fail(domain.ErrCycleDetected)
}

type minHeap []int

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// simulationUnits returns the closure units that only simulation needs.
// Testbenches are simulation-only, and so is anything reachable only
// through a testbench. When the top is a testbench, the design is what the
// elaboratable units it instantiates reach.
func simulationUnits(g *domain.Graph, top domain.UnitKey, arch domain.Identifier, closure []*domain.DesignUnit) map[domain.UnitKey]bool {
	design := make(map[domain.UnitKey]bool)
	topUnit, _ := g.Unit(top)

	if topUnit.IsTestbench() {
		benches := []domain.UnitKey{top}
		if topUnit.Kind.HasArchitectures() {
			if arch.IsZero() {
				benches = append(benches, g.DefaultArchitecture(top))
			} else {
				benches = append(benches, domain.UnitKey{Library: top.Library, Name: top.Name, Secondary: arch.Fold()})
			}
		}
		for _, b := range benches {
			for _, e := range g.Edges(b) {
				dut, ok := g.Unit(e.To)
				if !ok || !dut.Kind.IsElaboratable() || dut.IsTestbench() || e.To == top {
					continue
				}
				reach, err := g.Closure(e.To, e.Arch.Secondary)
				if err != nil {
					continue
				}
				for _, u := range reach {
					design[u.Key] = true
				}
			}
		}
	} else {
		for _, u := range closure {
			design[u.Key] = true
		}
	}

	sim := make(map[domain.UnitKey]bool)
	for _, u := range closure {
		if !design[u.Key] || isBench(g, u) {
			sim[u.Key] = true
		}
	}
	return sim
}

// isBench reports whether u is a testbench or belongs to one.
func isBench(g *domain.Graph, u *domain.DesignUnit) bool {
	if u.IsTestbench() {
		return true
	}
	if u.Kind != domain.KindArchitecture {
		return false
	}
	entity, ok := g.Unit(u.Key.PrimaryKey())
	return ok && entity.IsTestbench()
}
