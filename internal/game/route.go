package game

import (
	"container/heap"

	"github.com/Faultbox/tiltmaze/internal/geometry"
)

// Cell is a layout grid coordinate.
type Cell struct {
	Col, Row int
}

// routeNode is an A* search node.
type routeNode struct {
	cell   Cell
	g, f   int
	parent *routeNode
	index  int // position in the heap
}

type routeHeap []*routeNode

func (h routeHeap) Len() int { return len(h) }
func (h routeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g > h[j].g
}
func (h routeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *routeHeap) Push(x any) {
	n := x.(*routeNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *routeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*h = old[:len(old)-1]
	return n
}

// Moves in search order. Diagonals are left out: the ball cannot squeeze
// past a wall corner.
var moves = [4]Cell{{0, 1}, {-1, 0}, {0, -1}, {1, 0}}

// FindRoute returns the shortest chain of open cells from start to goal,
// both included, or nil when the goal cannot be reached.
func FindRoute(l geometry.Layout, start, goal Cell) []Cell {
	if !l.IsOpen(start.Col, start.Row) || !l.IsOpen(goal.Col, goal.Row) {
		return nil
	}

	open := &routeHeap{}
	nodes := map[Cell]*routeNode{}
	closed := map[Cell]bool{}

	first := &routeNode{cell: start, f: manhattan(start, goal)}
	heap.Push(open, first)
	nodes[start] = first

	for open.Len() > 0 {
		cur := heap.Pop(open).(*routeNode)
		if cur.cell == goal {
			return unwind(cur)
		}
		closed[cur.cell] = true

		for _, m := range moves {
			next := Cell{cur.cell.Col + m.Col, cur.cell.Row + m.Row}
			if closed[next] || !l.IsOpen(next.Col, next.Row) {
				continue
			}
			g := cur.g + 1
			n, seen := nodes[next]
			switch {
			case !seen:
				n = &routeNode{cell: next, g: g, f: g + manhattan(next, goal), parent: cur}
				nodes[next] = n
				heap.Push(open, n)
			case g < n.g:
				n.f += g - n.g
				n.g = g
				n.parent = cur
				heap.Fix(open, n.index)
			}
		}
	}
	return nil
}

func manhattan(a, b Cell) int {
	return iabs(a.Col-b.Col) + iabs(a.Row-b.Row)
}

func unwind(n *routeNode) []Cell {
	var path []Cell
	for ; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
