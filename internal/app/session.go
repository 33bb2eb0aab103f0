package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lifegrid/internal/fsutil"
	"lifegrid/pkg/core"
	"lifegrid/pkg/sims/life"
)

// Snapshot is a point-in-time copy of a session's board.
type Snapshot struct {
	Size       core.Size
	Generation uint64
	Population int
	Cells      [][]uint8
}

// FrameFunc receives a snapshot once per frame while a session runs.
type FrameFunc func(Snapshot)

// Session owns one grid and serializes every access to it, so a timed driver
// and interactive edits can share the board.
type Session struct {
	mu     sync.Mutex
	grid   *life.Grid
	fsys   fsutil.FileSystem
	log    logrus.FieldLogger
	paused bool
	pacer  *core.FixedStep
	rate   int

	frameRate int
	maxGens   uint64
}

// NewSession builds a session around a fresh grid described by cfg. The
// config is expected to have passed Validate.
func NewSession(cfg *Config, fsys fsutil.FileSystem, log logrus.FieldLogger) (*Session, error) {
	g, err := life.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Session{
		grid:      g,
		fsys:      fsys,
		log:       log,
		paused:    cfg.Paused,
		pacer:     core.NewFixedStep(cfg.Rate),
		rate:      cfg.Rate,
		frameRate: cfg.TPS,
		maxGens:   cfg.Generations,
	}, nil
}

// Size returns the board dimensions.
func (s *Session) Size() core.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Size()
}

// Toggle flips one cell. Out-of-range coordinates return life.ErrOutOfBounds
// and leave the board unchanged.
func (s *Session) Toggle(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Toggle(x, y)
}

// Set forces one cell alive or dead.
func (s *Session) Set(x, y int, alive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Set(x, y, alive)
}

// Step advances the board one generation regardless of the paused state.
func (s *Session) Step() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Step()
	return s.grid.Generation()
}

// Clear kills every cell.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Clear()
}

// Randomize reseeds the board.
func (s *Session) Randomize(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Randomize(seed)
	s.log.WithFields(logrus.Fields{"seed": seed, "population": s.grid.Population()}).Info("board randomized")
}

// Snapshot copies the current board.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Size:       s.grid.Size(),
		Generation: s.grid.Generation(),
		Population: s.grid.Population(),
		Cells:      s.grid.State(),
	}
}

// Load replaces the board with the one stored at path. The file must match
// the current dimensions; on any error the existing board is kept.
func (s *Session) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := s.grid.Size()
	g, err := life.LoadFile(s.fsys, path, size.W, size.H)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("load failed, keeping current board")
		return err
	}
	s.grid = g
	s.log.WithFields(logrus.Fields{"path": path, "population": g.Population()}).Info("board loaded")
	return nil
}

// Adopt replaces the board with g, which may have different dimensions.
func (s *Session) Adopt(g *life.Grid) {
	if g == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = g
}

// Save writes the board to path.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := life.SaveFile(s.fsys, path, s.grid); err != nil {
		s.log.WithError(err).WithField("path", path).Warn("save failed")
		return err
	}
	s.log.WithFields(logrus.Fields{"path": path, "generation": s.grid.Generation()}).Info("board saved")
	return nil
}

// Export writes the board to w in the plain-text board format.
func (s *Session) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return life.Save(w, s.grid)
}

// Pause stops timed stepping. Manual Step calls still advance the board.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume restarts timed stepping.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused reports whether timed stepping is suspended.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetRate changes the number of generations per second taken by Run. Rates
// above the frame rate are capped to it; non-positive rates are ignored.
func (s *Session) SetRate(gps int) {
	if gps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	gps = min(gps, s.frameRate)
	s.rate = gps
	s.pacer.SetTPS(gps)
}

// Rate returns the current generations per second.
func (s *Session) Rate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// ErrGenerationLimit is returned by Run once the configured number of
// generations has been reached.
var ErrGenerationLimit = errors.New("app: generation limit reached")

// Run drives the board at the configured frame rate until ctx is done or the
// generation limit is hit. Each frame takes at most one generation, paced by
// the session rate, and then reports a snapshot to onFrame when it is set.
func (s *Session) Run(ctx context.Context, onFrame FrameFunc) error {
	period := time.Second / time.Duration(max(s.frameRate, 1))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	s.log.WithFields(logrus.Fields{
		"fps":  s.frameRate,
		"rate": s.Rate(),
		"size": s.Size(),
	}).Info("session started")

	for {
		select {
		case <-ctx.Done():
			s.log.WithField("generation", s.Snapshot().Generation).Info("session stopped")
			return ctx.Err()
		case <-ticker.C:
		}

		snap, done := s.frame(onFrame != nil)
		if onFrame != nil {
			onFrame(snap)
		}
		if done {
			s.log.WithFields(logrus.Fields{
				"generation": snap.Generation,
				"population": snap.Population,
			}).Info("generation limit reached")
			return ErrGenerationLimit
		}
	}
}

func (s *Session) frame(wantCells bool) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused && s.pacer.ShouldStep() {
		s.grid.Step()
		s.log.WithFields(logrus.Fields{
			"generation": s.grid.Generation(),
			"population": s.grid.Population(),
		}).Debug("step")
	}
	done := s.maxGens > 0 && s.grid.Generation() >= s.maxGens
	if !wantCells {
		return Snapshot{
			Size:       s.grid.Size(),
			Generation: s.grid.Generation(),
			Population: s.grid.Population(),
		}, done
	}
	return s.snapshotLocked(), done
}
