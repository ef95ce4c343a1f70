package roadnet

import (
	"context"
	"errors"
	"math"
)

const noNode = math.MaxUint32

// errUnreachable is internal; Network translates it to the refiner's
// sentinel before it crosses the package boundary.
var errUnreachable = errors.New("roadnet: target unreachable from source")

// minHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap.
type minHeap struct {
	items []pqItem
}

// pqItem is a priority queue entry. Distances are uint64 millimeters so
// long multi-edge paths cannot overflow the uint32 edge weights.
type pqItem struct {
	node uint32
	dist uint64
}

func (h *minHeap) len() int { return len(h.items) }

func (h *minHeap) push(node uint32, dist uint64) {
	h.items = append(h.items, pqItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].dist >= h.items[parent].dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].dist < h.items[smallest].dist {
			smallest = left
		}
		if right < n && h.items[right].dist < h.items[smallest].dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// ctxCheckInterval is how many settled nodes pass between context polls.
const ctxCheckInterval = 1024

// shortestPath runs unidirectional Dijkstra from source, stopping once
// target is settled. It returns the node sequence source..target and the
// distance array in millimeters (valid for nodes on the path).
func (g *Graph) shortestPath(ctx context.Context, source, target uint32) ([]uint32, []uint64, error) {
	if source >= g.NumNodes || target >= g.NumNodes {
		return nil, nil, errors.New("roadnet: node index out of range")
	}

	dist := make([]uint64, g.NumNodes)
	pred := make([]uint32, g.NumNodes)
	for i := range dist {
		dist[i] = math.MaxUint64
		pred[i] = noNode
	}
	dist[source] = 0

	pq := minHeap{items: make([]pqItem, 0, 256)}
	pq.push(source, 0)

	settled := 0
	for pq.len() > 0 {
		item := pq.pop()
		u := item.node
		if item.dist > dist[u] {
			continue // stale entry
		}
		if u == target {
			break
		}

		settled++
		if settled%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			nd := item.dist + uint64(g.WeightMM[e])
			if nd < dist[v] {
				dist[v] = nd
				pred[v] = u
				pq.push(v, nd)
			}
		}
	}

	if dist[target] == math.MaxUint64 {
		return nil, nil, errUnreachable
	}

	// Walk predecessors back to the source, then reverse.
	var path []uint32
	for u := target; ; u = pred[u] {
		path = append(path, u)
		if u == source {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, dist, nil
}
