package symbols

import (
	"sort"

	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// depGraph maps each registered TVar to the set of TVars its size
// depends on: struct fields and enum constructor arguments, by value.
// Pointer and function edges break the chain; generic parameters are
// excluded.
func (st *SymTable) depGraph() map[typesystem.TVar]map[typesystem.TVar]struct{} {
	graph := make(map[typesystem.TVar]map[typesystem.TVar]struct{}, len(st.types))
	for tv, info := range st.types {
		deps := make(map[typesystem.TVar]struct{})
		switch k := info.Kind.(type) {
		case StructType:
			for _, f := range k.Fields {
				addDeps(deps, f.Type)
			}
		case EnumType:
			for _, c := range k.Constructors {
				sym, ok := st.nodes[c.ID]
				if !ok {
					continue
				}
				cons, ok := sym.Kind.(EnumConsSym)
				if !ok {
					continue
				}
				for _, arg := range cons.Args {
					addDeps(deps, arg)
				}
			}
		case BuiltinType:
		}
		graph[tv] = deps
	}
	return graph
}

func addDeps(deps map[typesystem.TVar]struct{}, t typesystem.Type) {
	for tv := range typesystem.SizeDependencies(t) {
		deps[tv] = struct{}{}
	}
}

// topoSort orders the graph dependencies-first with Kahn's algorithm.
// TVars still holding edges when the queue drains sit on a by-value
// cycle; they come back in cyclic, sorted by id.
func topoSort(graph map[typesystem.TVar]map[typesystem.TVar]struct{}) (order, cyclic []typesystem.TVar) {
	nodes := make([]typesystem.TVar, 0, len(graph))
	for tv := range graph {
		nodes = append(nodes, tv)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	// dependents[d] = everyone whose size needs d.
	dependents := make(map[typesystem.TVar][]typesystem.TVar, len(graph))
	indeg := make(map[typesystem.TVar]int, len(graph))
	for _, tv := range nodes {
		n := 0
		for dep := range graph[tv] {
			if _, known := graph[dep]; !known {
				// unregistered dependency, nothing to wait for
				continue
			}
			dependents[dep] = append(dependents[dep], tv)
			n++
		}
		indeg[tv] = n
	}

	var queue []typesystem.TVar
	for _, tv := range nodes {
		if indeg[tv] == 0 {
			queue = append(queue, tv)
		}
	}

	order = make([]typesystem.TVar, 0, len(nodes))
	for len(queue) > 0 {
		tv := queue[0]
		queue = queue[1:]
		order = append(order, tv)
		next := dependents[tv]
		sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
		for _, dep := range next {
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		for _, tv := range nodes {
			if indeg[tv] > 0 {
				cyclic = append(cyclic, tv)
			}
		}
	}
	return order, cyclic
}

// calculateSizes walks the topo order and computes a size for every
// non-generic type. A declaration depending on an unsized type gets a
// diagnostic and stays sizeless; construction carries on.
func (st *SymTable) calculateSizes(ctx *diagnostics.Context) {
	for _, tv := range st.order {
		info := st.types[tv]
		switch k := info.Kind.(type) {
		case BuiltinType:
			if n, ok := tv.BuiltinSize(st.ptrWidth); ok {
				st.sizes[tv] = n
			}
		case StructType:
			if len(k.Params) > 0 {
				continue
			}
			size := 0
			offset := 0
			ok := true
			for _, f := range k.Fields {
				fs := st.Sizeof(f.Type)
				if fs.Class != SizeSized {
					if fs.Class == SizeUnsized {
						ctx.Report(diagnostics.NewError(diagnostics.ErrS002, info.Pos,
							"field %s of %s has no known size", f.Name, info.Name))
					}
					ok = false
					break
				}
				if st.layout == config.LayoutAligned {
					offset = alignUp(offset, st.alignOf(f.Type))
				}
				offset += fs.Bytes
			}
			if !ok {
				continue
			}
			size = offset
			if st.layout == config.LayoutAligned {
				size = alignUp(size, st.alignOfStruct(k.Fields))
			}
			st.sizes[tv] = size
		case EnumType:
			if len(k.Params) > 0 {
				continue
			}
			payload := 0
			ok := true
			for _, c := range k.Constructors {
				sym, found := st.nodes[c.ID]
				if !found {
					continue
				}
				cons, isCons := sym.Kind.(EnumConsSym)
				if !isCons {
					continue
				}
				s := st.sumSizes(cons.Args)
				if s.Class != SizeSized {
					if s.Class == SizeUnsized {
						ctx.Report(diagnostics.NewError(diagnostics.ErrS002, info.Pos,
							"constructor %s of %s has no known size", c.Name, info.Name))
					}
					ok = false
					break
				}
				if s.Bytes > payload {
					payload = s.Bytes
				}
			}
			if !ok {
				continue
			}
			st.sizes[tv] = enumTagSize + payload
		}
	}
}

// enumTagSize is the discriminant width prepended to every enum
// payload.
const enumTagSize = 4

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}
