package pack

// Config tunes the packing loop. The zero value selects defaults; nil is
// accepted wherever a Config is expected.
type Config struct {
	// MaxIterations bounds the number of overflow resolution rounds.
	// Zero selects the default of 16.
	MaxIterations int
	// SplitBudget is the target shard size for subtable splitting.
	// Zero selects the reach of a 16-bit offset.
	SplitBudget int

	DisableSplitting   bool
	DisablePromotion   bool
	DisableDuplication bool
}

const (
	defaultMaxIterations = 16
	defaultSplitBudget   = maxLayerSize
)

func (c *Config) maxIterations() int {
	if c == nil || c.MaxIterations == 0 {
		return defaultMaxIterations
	}
	return c.MaxIterations
}

func (c *Config) splitBudget() int {
	if c == nil || c.SplitBudget == 0 {
		return defaultSplitBudget
	}
	return c.SplitBudget
}

func (c *Config) splitting() bool   { return c == nil || !c.DisableSplitting }
func (c *Config) promotion() bool   { return c == nil || !c.DisablePromotion }
func (c *Config) duplication() bool { return c == nil || !c.DisableDuplication }

// Pack finds an emission order in which every offset fits its declared
// width, rewriting the graph where necessary, and returns the serialized
// bytes. On failure the returned error is a *PackingError wrapping one of
// the sentinel errors of this package.
//
// The strategy follows the HarfBuzz repacker: topological sort, then
// shortest-distance sort, then graph rewrites (splitting, promotion, space
// assignment, subgraph isolation, duplication) in a bounded loop.
func (g *Graph) Pack(cfg *Config) ([]byte, error) {
	if err := g.packObjects(cfg); err != nil {
		return nil, err
	}
	return g.serialize(), nil
}

func (g *Graph) packObjects(cfg *Config) error {
	done, err := g.basicSort()
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	if cfg.splitting() {
		g.trySplittingSubtables(cfg.splitBudget())
	}
	if cfg.promotion() {
		g.tryPromotingSubtables()
	}

	tracer().Infof("assigning spaces")
	g.assignSpaces()
	if err := g.sortShortestDistance(); err != nil {
		return err
	}
	if !g.hasOverflows() {
		return nil
	}

	for i := 0; i < cfg.maxIterations(); i++ {
		overflows := g.findOverflows()
		if len(overflows) == 0 {
			return nil
		}
		tracer().Debugf("round %d: %d overflows, current size %s", i, len(overflows), g.debugSize())
		changed := g.tryIsolatingSubgraphs(overflows)
		if !changed && cfg.duplication() {
			changed = g.tryDuplicating(overflows)
		}
		if !changed {
			g.debugOverflows(overflows)
			return &PackingError{
				reason:    ErrNoApplicableStrategy,
				Overflows: overflows,
				graph:     g,
			}
		}
		if err := g.sortShortestDistance(); err != nil {
			return err
		}
	}

	overflows := g.findOverflows()
	if len(overflows) == 0 {
		return nil
	}
	g.debugOverflows(overflows)
	return &PackingError{
		reason:    ErrOverflowUnresolved,
		Overflows: overflows,
		graph:     g,
	}
}

// basicSort establishes the initial order: Kahn, falling back to shortest
// distance. Subsequent operations on the graph require this order.
// Reports whether the graph already packs without overflows.
func (g *Graph) basicSort() (bool, error) {
	tracer().Debugf("sorting %d objects", len(g.objects))
	if err := g.sortKahn(); err != nil {
		return false, err
	}
	if !g.hasOverflows() {
		return true, nil
	}
	tracer().Debugf("kahn failed, trying shortest distance")
	if err := g.sortShortestDistance(); err != nil {
		return false, err
	}
	return !g.hasOverflows(), nil
}

// tryDuplicating clones shared children that sit at the far end of an
// overflowing offset, moving the overflowing parents onto the clone. This
// trades size for freedom of placement. Returns true if any change was
// made.
func (g *Graph) tryDuplicating(overflows []Overflow) bool {
	g.updateParents()
	clones := make(map[ObjectID]ObjectID)
	changed := false
	for _, o := range overflows {
		if len(g.nodes[o.Child].parents) < 2 {
			continue
		}
		dup, ok := clones[o.Child]
		if !ok {
			obj := g.objects[o.Child].clone()
			space := g.nodes[o.Child].space
			dup = g.AddObject(obj)
			g.nodes[dup].space = space
			// maximum priority, so the clone sorts right after the
			// overflowing parents instead of back where the original sat
			g.nodes[dup].priority = priorityMax
			clones[o.Child] = dup
			tracer().Debugf("duplicating shared object %d to %d", o.Child, dup)
		}
		pobj := g.objects[o.Parent]
		for i := range pobj.Offsets {
			if pobj.Offsets[i].Target == o.Child && pobj.Offsets[i].Len == o.Len {
				pobj.Offsets[i].Target = dup
			}
		}
		changed = true
	}
	if changed {
		g.parentsInvalid = true
		g.positionsInvalid = true
		g.removeOrphans()
	}
	return changed
}
