package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []ModuleID   // зависимости раньше зависящих
	Batches [][]ModuleID // волны независимых модулей
	Cyclic  bool
	Cycles  []ModuleID // узлы, оставшиеся в цикле
}

// ToposortKahn orders modules so that a module comes after the modules it
// uses. Modules left in cycles are appended to Order by ID.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Edges)
	// считаем по обратным рёбрам: сначала те, кто ничего не использует
	outdeg := make([]int, n)
	users := make([][]ModuleID, n)
	for from := range n {
		if !g.Present[from] {
			continue
		}
		id := toID(from)
		for _, to := range g.Edges[from] {
			outdeg[from]++
			users[to] = append(users[to], id)
		}
	}
	topo := &Topo{}
	var current []ModuleID
	active := 0
	for i := range n {
		if !g.Present[i] {
			continue
		}
		active++
		if outdeg[i] == 0 {
			current = append(current, toID(i))
		}
	}
	visited := make([]bool, n)
	for len(current) > 0 {
		slices.Sort(current)
		topo.Batches = append(topo.Batches, current)
		var next []ModuleID
		for _, id := range current {
			topo.Order = append(topo.Order, id)
			visited[id] = true
			for _, u := range users[id] {
				outdeg[u]--
				if outdeg[u] == 0 {
					next = append(next, u)
				}
			}
		}
		current = next
	}
	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range n {
			if g.Present[i] && !visited[i] {
				topo.Cycles = append(topo.Cycles, toID(i))
			}
		}
		topo.Order = append(topo.Order, topo.Cycles...)
	}
	return topo
}

func toID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}
