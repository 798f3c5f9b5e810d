package optim

// Pass pipeline over per-function CFGs. Each pass reports whether it
// changed the graph (the LVN and DCE passes always report true); the
// pipeline threads a shared analysis cache and the data-flow
// configuration through every pass.

import (
	"github.com/tliron/commonlog"

	"brilt/internal/analysis"
	"brilt/internal/cfg"
	"brilt/internal/dataflow"
)

var log = commonlog.GetLogger("brilt.optim")

// Pass is a single CFG transformation.
type Pass interface {
	Name() string
	Description() string
	Apply(c *cfg.Cfg, cache *analysis.Cache, conf dataflow.Config) (bool, error)
}

// Pipeline runs passes in order over each function's CFG.
type Pipeline struct {
	passes []Pass
	cache  *analysis.Cache
	conf   dataflow.Config
}

// NewPipeline builds an empty pipeline.
func NewPipeline(conf dataflow.Config) *Pipeline {
	return &Pipeline{
		cache: analysis.NewCache(64),
		conf:  conf,
	}
}

// Add appends a pass.
func (p *Pipeline) Add(pass Pass) *Pipeline {
	p.passes = append(p.passes, pass)
	return p
}

// Run applies every pass to every CFG, in order.
func (p *Pipeline) Run(cfgs []*cfg.Cfg) error {
	for _, c := range cfgs {
		for _, pass := range p.passes {
			changed, err := pass.Apply(c, p.cache, p.conf)
			if err != nil {
				return err
			}
			if changed {
				log.Debugf("%s: %s changed the graph", c.Fn.Name, pass.Name())
			}
		}
	}
	return nil
}

// LVNPass numbers every block locally.
type LVNPass struct {
	Fold bool
}

func (LVNPass) Name() string { return "lvn" }
func (LVNPass) Description() string {
	return "local value numbering with optional constant folding"
}

func (p LVNPass) Apply(c *cfg.Cfg, _ *analysis.Cache, _ dataflow.Config) (bool, error) {
	for n := 0; n < c.NumNodes(); n++ {
		LVNBlock(c.Nodes[n].Block, p.Fold, nil)
	}
	c.Touch()
	return true, nil
}

// DCEPass eliminates dead code using liveness across blocks.
type DCEPass struct {
	GlobalConsts bool
}

func (DCEPass) Name() string { return "dce" }
func (DCEPass) Description() string {
	return "dead-code elimination over value-numbered blocks"
}

func (p DCEPass) Apply(c *cfg.Cfg, _ *analysis.Cache, conf dataflow.Config) (bool, error) {
	DCE(c, DCEOptions{GlobalConsts: p.GlobalConsts}, conf)
	return true, nil
}

// LICMPass hoists loop invariants through SSA form.
type LICMPass struct{}

func (LICMPass) Name() string { return "licm" }
func (LICMPass) Description() string {
	return "loop-invariant code motion into injected preheaders"
}

func (LICMPass) Apply(c *cfg.Cfg, cache *analysis.Cache, conf dataflow.Config) (bool, error) {
	return LICM(c, cache, conf)
}
