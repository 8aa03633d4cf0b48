package algorithms

import (
	"container/heap"
	"math"
)

// Grid - 장애물을 래스터화한 점유 격자
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	Origin   Vec2
	blocked  []bool
}

// NewGrid - 빈 격자 생성
func NewGrid(width, height int, cellSize float64, origin Vec2) *Grid {
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		Origin:   origin,
		blocked:  make([]bool, width*height),
	}
}

// GridFromShapes - 씬 경계와 장애물로 격자를 만든다.
// 셀 중심이 (장애물 + margin) 안에 들면 막힌 셀로 표시한다.
func GridFromShapes(bounds Rect, cellSize float64, shapes []Shape, margin float64) *Grid {
	w := int(math.Ceil((bounds.Max.X - bounds.Min.X) / cellSize))
	h := int(math.Ceil((bounds.Max.Y - bounds.Min.Y) / cellSize))
	g := NewGrid(w, h, cellSize, bounds.Min)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := g.CellCenter(x, y)
			for _, s := range shapes {
				if c.Dist(s.ClosestPoint(c)) < margin || s.Contains(c) {
					g.blocked[y*w+x] = true
					break
				}
			}
		}
	}
	return g
}

// AddObstacle - 셀 하나를 막는다
func (g *Grid) AddObstacle(x, y int) {
	if g.IsInside(x, y) {
		g.blocked[y*g.Width+x] = true
	}
}

// IsObstacle - 막힌 셀인지
func (g *Grid) IsObstacle(x, y int) bool {
	return g.IsInside(x, y) && g.blocked[y*g.Width+x]
}

// IsInside - 격자 범위 검사
func (g *Grid) IsInside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// CellCenter - 셀 중심의 월드 좌표
func (g *Grid) CellCenter(x, y int) Vec2 {
	return Vec2{
		X: g.Origin.X + (float64(x)+0.5)*g.CellSize,
		Y: g.Origin.Y + (float64(y)+0.5)*g.CellSize,
	}
}

// WorldToCell - 월드 좌표 → 셀 좌표
func (g *Grid) WorldToCell(p Vec2) (int, int) {
	return int(math.Floor((p.X - g.Origin.X) / g.CellSize)), int(math.Floor((p.Y - g.Origin.Y) / g.CellSize))
}

type node struct {
	x, y   int
	g, f   float64
	parent *node
	index  int
}

type openSet []*node

func (pq openSet) Len() int           { return len(pq) }
func (pq openSet) Less(i, j int) bool { return pq[i].f < pq[j].f }
func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *openSet) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

var directions = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0}, // 상하좌우
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, // 대각선
}

// FindPath - 8방향 A*. 시작/목표가 막혔거나 경로가 없으면 nil
func (g *Grid) FindPath(start, goal Vec2) []Vec2 {
	sx, sy := g.WorldToCell(start)
	gx, gy := g.WorldToCell(goal)
	if !g.IsInside(sx, sy) || !g.IsInside(gx, gy) {
		return nil
	}
	if g.IsObstacle(sx, sy) || g.IsObstacle(gx, gy) {
		return nil
	}
	if sx == gx && sy == gy {
		return []Vec2{start, goal}
	}

	h := func(x, y int) float64 {
		return math.Hypot(float64(gx-x), float64(gy-y))
	}

	open := &openSet{}
	heap.Init(open)
	best := make([]float64, g.Width*g.Height)
	for i := range best {
		best[i] = math.Inf(1)
	}
	closed := make([]bool, g.Width*g.Height)

	heap.Push(open, &node{x: sx, y: sy, g: 0, f: h(sx, sy)})
	best[sy*g.Width+sx] = 0

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		idx := cur.y*g.Width + cur.x
		if closed[idx] {
			continue
		}
		closed[idx] = true

		if cur.x == gx && cur.y == gy {
			return g.reconstruct(cur, start, goal)
		}

		for _, d := range directions {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if !g.IsInside(nx, ny) || g.IsObstacle(nx, ny) || closed[ny*g.Width+nx] {
				continue
			}
			// 대각선 이동 시 모서리 끼임 방지
			if d[0] != 0 && d[1] != 0 && (g.IsObstacle(cur.x+d[0], cur.y) || g.IsObstacle(cur.x, cur.y+d[1])) {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			tentative := cur.g + cost
			if tentative >= best[ny*g.Width+nx] {
				continue
			}
			best[ny*g.Width+nx] = tentative
			heap.Push(open, &node{x: nx, y: ny, g: tentative, f: tentative + h(nx, ny), parent: cur})
		}
	}
	return nil
}

// reconstruct - 부모를 따라 경로를 만들고 양 끝을 실제 좌표로 바꾼 뒤 간소화
func (g *Grid) reconstruct(n *node, start, goal Vec2) []Vec2 {
	var cells []Vec2
	for cur := n; cur != nil; cur = cur.parent {
		cells = append(cells, g.CellCenter(cur.x, cur.y))
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	cells[0] = start
	cells[len(cells)-1] = goal
	return SimplifyPath(cells, g.CellSize*0.5)
}

// SimplifyPath - Douglas-Peucker 경로 간소화
func SimplifyPath(path []Vec2, epsilon float64) []Vec2 {
	if len(path) < 3 {
		return path
	}

	dmax := 0.0
	index := 0
	last := len(path) - 1
	for i := 1; i < last; i++ {
		d := perpendicularDistance(path[i], path[0], path[last])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := SimplifyPath(path[:index+1], epsilon)
		right := SimplifyPath(path[index:], epsilon)
		out := make([]Vec2, 0, len(left)+len(right)-1)
		out = append(out, left[:len(left)-1]...)
		return append(out, right...)
	}
	return []Vec2{path[0], path[last]}
}

// perpendicularDistance - 점에서 선분까지 거리
func perpendicularDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// PathLength - 경로 총 길이
func PathLength(path []Vec2) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Dist(path[i-1])
	}
	return total
}
