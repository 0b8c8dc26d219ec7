package graph

import (
	"go.uber.org/zap"
)

// Cache owns one graph per kind & the sea router. Graphs are rebuilt when
// asked for with inputs whose stamp differs from the cached one, or after
// an explicit Invalidate.
type Cache struct {
	land   LandCosts
	sea    SeaCosts
	log    *zap.Logger
	graphs map[Kind]*Graph
	router *Router
	builds int
}

// NewCache returns an empty cache
func NewCache(land LandCosts, sea SeaCosts, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{land: land, sea: sea, log: log, graphs: map[Kind]*Graph{}}
}

// LandCosts used to build land graphs
func (c *Cache) LandCosts() LandCosts {
	return c.land
}

// Builds is the number of graphs built so far.
func (c *Cache) Builds() int {
	return c.builds
}

// Land returns the land graph for in.
func (c *Cache) Land(in Inputs) *Graph {
	return c.get(Land, in)
}

// Sea returns the sea graph for in.
func (c *Cache) Sea(in Inputs) *Graph {
	return c.get(Sea, in)
}

// Router returns the router over the current sea graph. The router (and
// its cached trees) is replaced whenever the sea graph is.
func (c *Cache) Router(in Inputs) *Router {
	g := c.Sea(in)
	if c.router == nil || c.router.Graph() != g {
		c.router = NewRouter(g)
	}
	return c.router
}

// Invalidate drops the given kinds, or everything if none are given.
func (c *Cache) Invalidate(kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = []Kind{Land, Sea}
	}
	for _, k := range kinds {
		delete(c.graphs, k)
		if k == Sea {
			c.router = nil
		}
	}
}

func (c *Cache) get(k Kind, in Inputs) *Graph {
	stamp := in.Stamp()
	if g, ok := c.graphs[k]; ok {
		if g.Stamp == stamp && g.Mesh() == in.Mesh {
			return g
		}
		c.log.Debug("graph stale, rebuilding",
			zap.Stringer("kind", k),
			zap.Uint64("had", g.Stamp),
			zap.Uint64("want", stamp),
		)
	}

	if !in.Ready() {
		c.log.Warn("graph input not ready", zap.Stringer("kind", k))
	}

	var g *Graph
	switch k {
	case Land:
		g = BuildLand(in, c.land)
	default:
		g = BuildSea(in, c.sea)
	}
	c.graphs[k] = g
	c.builds++
	c.log.Debug("graph built",
		zap.Stringer("kind", k),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return g
}
