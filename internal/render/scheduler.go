package render

import (
	"image"
	"sync"
	"time"

	"github.com/codynego/smarteditor/internal/adjust"
	"github.com/codynego/smarteditor/internal/logging"
)

// DefaultInterval coalesces requests to roughly one render per frame.
const DefaultInterval = 16 * time.Millisecond

// Request is one render to perform.
type Request struct {
	Source  *image.NRGBA
	State   adjust.State
	Options Options
}

// Result is a committed render. Err is set when the render failed; Image is
// then the previous successful output.
type Result struct {
	Generation uint64
	Image      *image.NRGBA
	Err        error
}

// Scheduler debounces render requests. Requests arriving within one interval
// collapse into a single render of the newest one. Every request takes a
// generation number and a render is only committed when its generation is
// newer than the last committed one, so a slow render can never replace the
// output of a later request.
type Scheduler struct {
	engine   *Engine
	interval time.Duration

	// renderMu is held from take to commit so Flush waits for a render the
	// timer already started.
	renderMu sync.Mutex

	mu         sync.Mutex
	timer      *time.Timer
	pending    *Request
	pendingGen uint64
	gen        uint64
	committed  uint64
	output     *image.NRGBA
	err        error
	renders    int
	listener   func(Result)
}

// NewScheduler creates a Scheduler. An interval of zero or less uses
// DefaultInterval.
func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{engine: engine, interval: interval}
}

// Subscribe registers fn to receive every committed result. fn runs on the
// goroutine that performed the render and must not call Flush.
func (s *Scheduler) Subscribe(fn func(Result)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Schedule queues req, replacing any request still waiting, and returns its
// generation.
func (s *Scheduler) Schedule(req Request) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.pending = &req
	s.pendingGen = s.gen
	if s.timer == nil {
		s.timer = time.AfterFunc(s.interval, s.run)
	}
	return s.gen
}

// Flush waits for a render in progress, renders the waiting request
// immediately, if any, and returns the latest result.
func (s *Scheduler) Flush() Result {
	s.run()
	return s.Latest()
}

// Latest returns the committed output and the error of the newest committed
// render.
func (s *Scheduler) Latest() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Result{Generation: s.committed, Image: s.output, Err: s.err}
}

func (s *Scheduler) Output() *image.NRGBA { return s.Latest().Image }
func (s *Scheduler) Err() error           { return s.Latest().Err }

// Renders returns how many renders have run.
func (s *Scheduler) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Pending reports whether a request is waiting for the timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Reset drops any waiting request and the committed output.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.pending = nil
	s.output = nil
	s.err = nil
	s.committed = s.gen
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) take() (Request, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if s.pending == nil {
		return Request{}, 0, false
	}
	req, gen := *s.pending, s.pendingGen
	s.pending = nil
	s.renders++
	return req, gen, true
}

func (s *Scheduler) run() {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	req, gen, ok := s.take()
	if !ok {
		return
	}
	img, err := s.engine.Render(req.Source, req.State, req.Options)
	s.commit(gen, img, err)
}

func (s *Scheduler) commit(gen uint64, img *image.NRGBA, err error) {
	s.mu.Lock()
	if gen <= s.committed {
		s.mu.Unlock()
		logging.L().Debug("discarding stale render", "generation", gen, "committed", s.committed)
		return
	}
	s.committed = gen
	if err != nil {
		s.err = err
	} else {
		s.output = img
		s.err = nil
	}
	res := Result{Generation: gen, Image: s.output, Err: s.err}
	fn := s.listener
	s.mu.Unlock()

	if err != nil {
		logging.L().Warn("render failed, keeping previous output", "generation", gen, "error", err)
	}
	if fn != nil {
		fn(res)
	}
}
