// Package autoarima selects the order of a seasonal ARIMA model following the Hyndman-Khandakar
// algorithm. Differencing orders come from unit root and seasonal strength tests and the remaining
// orders from a stepwise walk over neighbouring models scored by an information criterion.
package autoarima

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aouyang1/go-autoforecast/arima"
	"github.com/aouyang1/go-autoforecast/stats"

	"golang.org/x/sync/errgroup"
)

// Candidate is one model considered by the search. Err is set when the fit failed or the model was
// rejected for having roots near the unit circle.
type Candidate struct {
	Order    arima.Order
	Constant bool
	Score    float64
	Err      error

	model *arima.Model
}

func (c Candidate) String() string {
	s := c.Order.String()
	if c.Constant {
		s += " with constant"
	}
	return s
}

type Result struct {
	Model     *arima.Model
	Criterion Criterion
	Score     float64

	// ModelsEvaluated counts every candidate fit, including failed ones
	ModelsEvaluated int

	// Candidates lists every candidate in evaluation order
	Candidates []Candidate
}

type key struct {
	p, q, sp, sq int
	constant     bool
}

type search struct {
	cfg      *Config
	y        []float64
	m        int
	d, sd    int
	maxSP    int
	maxSQ    int
	constant bool

	visited map[key]bool
	trace   []Candidate
}

// Fit runs the order search over y and returns the best admissible model
func Fit(ctx context.Context, y []float64, cfg *Config) (*Result, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if len(y) == 0 {
		return nil, ErrNoData
	}

	s := newSearch(y, cfg)

	var best *Candidate
	if stats.IsConstant(y) {
		best, err = s.evaluate(ctx, []key{{constant: s.constant}}, 1)
	} else if cfg.Stepwise {
		best, err = s.stepwise(ctx)
	} else {
		best, err = s.exhaustive(ctx)
	}
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, fmt.Errorf("tried %d models, %w", len(s.trace), ErrNoModelFit)
	}
	if s.meanUnfit(best) {
		return nil, fmt.Errorf("%d points cannot estimate a mean, tried %d models, %w, %w",
			len(y), len(s.trace), ErrNoModelFit, arima.ErrInsufficientData)
	}

	return &Result{
		Model:           best.model,
		Criterion:       cfg.Criterion,
		Score:           best.Score,
		ModelsEvaluated: len(s.trace),
		Candidates:      s.trace,
	}, nil
}

func newSearch(y []float64, cfg *Config) *search {
	s := &search{
		cfg:     cfg,
		y:       y,
		m:       cfg.SeasonLength,
		maxSP:   cfg.MaxSP,
		maxSQ:   cfg.MaxSQ,
		visited: make(map[key]bool),
	}

	// too short to estimate any seasonal structure
	if s.m < 2 || len(y) <= 2*s.m {
		s.m = 1
		s.maxSP, s.maxSQ = 0, 0
	}

	s.sd = cfg.SD
	if s.m == 1 {
		s.sd = 0
	} else if s.sd == AutoDiff {
		s.sd = stats.NSDiffs(y, s.m, cfg.MaxSD)
	}

	s.d = cfg.D
	if s.d == AutoDiff {
		s.d = stats.NDiffs(stats.Difference(y, 0, s.sd, s.m), cfg.MaxD)
	}

	switch s.d + s.sd {
	case 0:
		s.constant = cfg.AllowMean
	case 1:
		s.constant = cfg.AllowDrift
	}
	return s
}

// meanUnfit reports an undifferenced search that settled on a zero mean model only because every
// model with a mean was too large for the series to score
func (s *search) meanUnfit(best *Candidate) bool {
	if !s.constant || s.d+s.sd != 0 || best.Constant {
		return false
	}
	var tried int
	for _, c := range s.trace {
		if !c.Constant {
			continue
		}
		if c.Err == nil && !math.IsInf(c.Score, 1) {
			return false
		}
		if c.Err != nil && !errors.Is(c.Err, arima.ErrInsufficientData) {
			return false
		}
		tried++
	}
	return tried > 0
}

func (s *search) order(k key) arima.Order {
	return arima.Order{
		P:  k.p,
		D:  s.d,
		Q:  k.q,
		SP: k.sp,
		SD: s.sd,
		SQ: k.sq,
		M:  s.m,
	}
}

func (s *search) valid(k key) bool {
	if k.p < 0 || k.q < 0 || k.sp < 0 || k.sq < 0 {
		return false
	}
	if k.p > s.cfg.MaxP || k.q > s.cfg.MaxQ || k.sp > s.maxSP || k.sq > s.maxSQ {
		return false
	}
	if k.p+k.q+k.sp+k.sq > s.cfg.MaxOrder {
		return false
	}
	return !k.constant || s.constant
}

func (s *search) fit(k key) Candidate {
	c := Candidate{
		Order:    s.order(k),
		Constant: k.constant,
		Score:    math.Inf(1),
	}

	model, err := arima.New(c.Order, &arima.Options{
		IncludeConstant:    k.constant,
		MaxFuncEvaluations: s.cfg.MaxFuncEvaluations,
		Tolerance:          s.cfg.Tolerance,
	})
	if err != nil {
		c.Err = err
		return c
	}
	if err := model.Fit(s.y); err != nil {
		c.Err = err
		return c
	}
	if err := model.Admissible(); err != nil {
		c.Err = err
		return c
	}

	score := s.cfg.Criterion.Score(model)
	if math.IsNaN(score) {
		c.Err = fmt.Errorf("%s has an undefined %s", c, s.cfg.Criterion)
		return c
	}
	c.Score = score
	c.model = model
	return c
}

// evaluate fits at most limit unvisited keys concurrently and returns the best successful candidate
// among them, or nil when none succeeded
func (s *search) evaluate(ctx context.Context, keys []key, limit int) (*Candidate, error) {
	var pending []key
	for _, k := range keys {
		if len(pending) >= limit {
			break
		}
		if s.visited[k] || !s.valid(k) {
			continue
		}
		s.visited[k] = true
		pending = append(pending, k)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	results := make([]Candidate, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i, k := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.fit(k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("order search interrupted, %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("order search interrupted, %w", err)
	}

	var best *Candidate
	for i := range results {
		s.trace = append(s.trace, results[i])
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Score < best.Score {
			best = &results[i]
		}
	}
	return best, nil
}

func (s *search) startKeys() []key {
	start := key{
		p:        min(s.cfg.StartP, s.cfg.MaxP),
		q:        min(s.cfg.StartQ, s.cfg.MaxQ),
		sp:       min(s.cfg.StartSP, s.maxSP),
		sq:       min(s.cfg.StartSQ, s.maxSQ),
		constant: s.constant,
	}
	keys := []key{
		start,
		{constant: s.constant},
		{p: min(1, s.cfg.MaxP), sp: min(1, s.maxSP), constant: s.constant},
		{q: min(1, s.cfg.MaxQ), sq: min(1, s.maxSQ), constant: s.constant},
	}
	if s.constant {
		keys = append(keys, key{})
	}
	return keys
}

func (s *search) neighbours(k key) []key {
	moves := [][4]int{
		{0, 0, -1, 0}, {0, 0, 1, 0}, {0, 0, 0, -1}, {0, 0, 0, 1},
		{0, 0, -1, -1}, {0, 0, 1, 1}, {0, 0, -1, 1}, {0, 0, 1, -1},
		{-1, 0, 0, 0}, {1, 0, 0, 0}, {0, -1, 0, 0}, {0, 1, 0, 0},
		{-1, -1, 0, 0}, {1, 1, 0, 0}, {-1, 1, 0, 0}, {1, -1, 0, 0},
	}
	keys := make([]key, 0, len(moves)+1)
	for _, mv := range moves {
		keys = append(keys, key{
			p:        k.p + mv[0],
			q:        k.q + mv[1],
			sp:       k.sp + mv[2],
			sq:       k.sq + mv[3],
			constant: k.constant,
		})
	}
	if s.constant {
		toggled := k
		toggled.constant = !k.constant
		keys = append(keys, toggled)
	}
	return keys
}

func keyOf(c *Candidate) key {
	return key{
		p:        c.Order.P,
		q:        c.Order.Q,
		sp:       c.Order.SP,
		sq:       c.Order.SQ,
		constant: c.Constant,
	}
}

func (s *search) stepwise(ctx context.Context) (*Candidate, error) {
	best, err := s.evaluate(ctx, s.startKeys(), s.cfg.MaxModels)
	if err != nil || best == nil {
		return best, err
	}

	for len(s.trace) < s.cfg.MaxModels {
		next, err := s.evaluate(ctx, s.neighbours(keyOf(best)), s.cfg.MaxModels-len(s.trace))
		if err != nil {
			return nil, err
		}
		if next == nil || next.Score >= best.Score {
			break
		}
		best = next
	}
	return best, nil
}

func (s *search) exhaustive(ctx context.Context) (*Candidate, error) {
	var keys []key
	for p := 0; p <= s.cfg.MaxP; p++ {
		for q := 0; q <= s.cfg.MaxQ; q++ {
			for sp := 0; sp <= s.maxSP; sp++ {
				for sq := 0; sq <= s.maxSQ; sq++ {
					keys = append(keys, key{p: p, q: q, sp: sp, sq: sq})
					if s.constant {
						keys = append(keys, key{p: p, q: q, sp: sp, sq: sq, constant: true})
					}
				}
			}
		}
	}
	return s.evaluate(ctx, keys, len(keys))
}

// Top returns the n best successful candidates of the search ordered by score
func (r *Result) Top(n int) []Candidate {
	var ok []Candidate
	for _, c := range r.Candidates {
		if c.Err == nil {
			ok = append(ok, c)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].Score < ok[j].Score
	})
	if n < len(ok) {
		ok = ok[:n]
	}
	return ok
}
