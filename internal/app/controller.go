package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/mq/queue"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/mq/worker"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/oracle"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/metrics"
)

// Controller defaults.
const (
	DefaultJudgeTimeout = 5 * time.Second
	submitTimeout       = 5 * time.Second

	workerShutdownTimeout = time.Second
)

// ControllerConfig wires a Controller to its collaborators. Zero values get
// defaults; Judge, Board and Tracker are optional.
type ControllerConfig struct {
	QueueSize      int
	TickInterval   time.Duration
	SampleInterval time.Duration
	JudgeTimeout   time.Duration

	Judge   oracle.Judge
	Board   *Board
	Tracker worker.Tracker

	Clock  func() time.Time
	Logger logger.Logger
}

// Controller drives one session. Samples, deadline ticks and judge replies
// go through one queue and are applied by a single goroutine, so the session
// itself needs no locking. Readers get the snapshot published after each
// update.
type Controller struct {
	sess    *session.Session
	cfg     ControllerConfig
	queue   *queue.InMemoryQueue
	sources []worker.Worker
	logger  logger.Logger

	busy     atomic.Bool
	snapshot atomic.Pointer[session.Snapshot]
	endedAt  atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	done    chan struct{}
}

// NewController prepares a controller for sess. Nothing runs until Start.
func NewController(sess *session.Session, cfg ControllerConfig) *Controller {
	if cfg.JudgeTimeout <= 0 {
		cfg.JudgeTimeout = DefaultJudgeTimeout
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = worker.DefaultTickInterval
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = worker.DefaultSampleInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get().Named("session")
	}

	var qopts []queue.Option
	if cfg.QueueSize > 0 {
		qopts = append(qopts, queue.WithCapacity(cfg.QueueSize))
	}

	c := &Controller{
		sess:   sess,
		cfg:    cfg,
		queue:  queue.NewInMemoryQueue(qopts...),
		logger: cfg.Logger,
		done:   make(chan struct{}),
	}
	c.sources = append(c.sources, worker.NewTicker(c.queue,
		worker.WithName("ticker-"+sess.ID()),
		worker.WithInterval(cfg.TickInterval),
		worker.WithClock(cfg.Clock),
		worker.WithLogger(cfg.Logger.Named("ticker")),
	))
	if cfg.Tracker != nil {
		c.sources = append(c.sources, worker.NewSampler(cfg.Tracker, c,
			worker.WithName("sampler-"+sess.ID()),
			worker.WithInterval(cfg.SampleInterval),
			worker.WithClock(cfg.Clock),
			worker.WithLogger(cfg.Logger.Named("sampler")),
		))
	}
	c.publish()
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.sess.ID() }

// Start arms the first round and launches the ticker, the sampler (when a
// tracker is attached) and the update loop. The controller stops when ctx
// is canceled.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.sess.Start(c.cfg.Clock()); err != nil {
		return err
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.publish()

	events := c.queue.Dequeue(c.ctx)

	for _, w := range c.sources {
		w := w
		c.workers.Add(1)
		go func() {
			defer c.workers.Done()
			w.Run(c.ctx)
		}()
	}

	go c.loop(events)

	c.logger.Info(c.ctx, "session started",
		logger.String("session", c.sess.ID()),
		logger.String("player", c.sess.PlayerName()),
	)
	return nil
}

// Stop abandons the session if it is still running and waits until every
// goroutine has exited and the tracker is closed.
func (c *Controller) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

// Done is closed once the controller has fully shut down.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Snapshot returns the state published after the latest update.
func (c *Controller) Snapshot() session.Snapshot {
	return *c.snapshot.Load()
}

// Summary returns the completed session's summary.
func (c *Controller) Summary() (session.Summary, bool) {
	snap := c.snapshot.Load()
	if snap.Summary == nil {
		return session.Summary{}, false
	}
	return *snap.Summary, true
}

// EndedAt returns when the controller shut down, or the zero time while it
// is running.
func (c *Controller) EndedAt() time.Time {
	ns := c.endedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Busy implements worker.Consumer.
func (c *Controller) Busy() bool { return c.busy.Load() }

// OfferSample implements worker.Consumer. It returns false while the
// previous sample is in flight, after shutdown, or when the queue is full.
func (c *Controller) OfferSample(ctx context.Context, s model.Sample) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	if !c.queue.Enqueue(ctx, model.Event{Kind: model.EventSample, At: c.cfg.Clock(), Sample: s}) {
		c.busy.Store(false)
		return false
	}
	return true
}

func (c *Controller) loop(events <-chan model.Event) {
	defer c.finish()

	for {
		select {
		case <-c.ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			c.handle(e)
			c.publish()
			if c.sess.Done() {
				return
			}
		}
	}
}

func (c *Controller) handle(e model.Event) {
	var (
		tr  round.Transition
		sum *session.Summary
	)
	r := c.sess.Current()

	switch e.Kind {
	case model.EventSample:
		tr, sum = c.sess.Observe(c.ctx, e.At, e.Sample)
		c.busy.Store(false)
		if !tr.Ignored {
			metrics.RecordSampleProcessed(tr.Accuracy)
		}
		if tr.RequestJudgement && r != nil {
			c.dispatchJudge(r.ID(), r.Challenge(), e.Sample)
		}
	case model.EventTick:
		tr, sum = c.sess.CheckDeadline(c.ctx, e.At)
	case model.EventJudgement:
		tr, sum = c.sess.Judge(c.ctx, e.At, e.RoundID, e.Accuracy, e.Err)
	default:
		return
	}

	if tr.Resolved && r != nil {
		metrics.RecordRoundResolved(tr.Outcome.String(), tr.Points)
		c.logger.Info(c.ctx, "round resolved",
			logger.String("session", c.sess.ID()),
			logger.String("round", r.ID()),
			logger.String("challenge", r.Challenge().ID),
			logger.String("outcome", tr.Outcome.String()),
			logger.Int("best_accuracy", r.BestAccuracy()),
			logger.Int("points", tr.Points),
		)
	}
	if sum != nil {
		c.submit(*sum)
	}
}

// dispatchJudge asks the judge off the update loop and feeds the answer back
// through the queue. If the answer cannot be queued the round times out.
func (c *Controller) dispatchJudge(roundID string, ch pose.Challenge, s model.Sample) {
	req := oracle.Request{
		Image:                s.Image,
		Pose:                 s.Pose,
		ChallengeID:          ch.ID,
		ChallengeName:        ch.DisplayName,
		ChallengeDescription: ch.Description,
	}

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()

		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.JudgeTimeout)
		defer cancel()

		start := time.Now()
		accuracy, err := 0, ErrJudgeUnavailable
		if c.cfg.Judge != nil {
			accuracy, err = c.cfg.Judge.Judge(ctx, req)
		}
		metrics.RecordJudgeLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordJudgeFailure()
			c.logger.Warn(c.ctx, "judge failed, scoring round as 0",
				logger.String("round", roundID),
				logger.Error(err),
			)
		}
		if c.ctx.Err() != nil {
			return
		}

		ev := model.Event{
			Kind:     model.EventJudgement,
			At:       c.cfg.Clock(),
			RoundID:  roundID,
			Accuracy: accuracy,
			Err:      err,
		}
		if !c.queue.Enqueue(c.ctx, ev) {
			c.logger.Warn(c.ctx, "judgement dropped, round will time out",
				logger.String("round", roundID),
			)
		}
	}()
}

func (c *Controller) submit(sum session.Summary) {
	if c.cfg.Board == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), submitTimeout)
	defer cancel()

	if err := c.cfg.Board.Submit(ctx, sum); err != nil {
		c.logger.Error(ctx, "failed to record session on the leaderboard",
			logger.String("session", sum.SessionID),
			logger.Error(err),
		)
	}
}

// finish runs on every exit path of the update loop.
func (c *Controller) finish() {
	c.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	for _, w := range c.sources {
		if err := w.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn(shutdownCtx, "event source did not stop", logger.Error(err))
		}
	}
	cancel()
	c.workers.Wait()

	if c.cfg.Tracker != nil {
		if err := c.cfg.Tracker.Close(); err != nil {
			c.logger.Warn(context.Background(), "tracker close failed", logger.Error(err))
		}
	}
	_ = c.queue.Close()

	now := c.cfg.Clock()
	c.sess.Abandon(now)
	c.endedAt.Store(now.UnixNano())
	c.publish()

	state := c.sess.State().String()
	metrics.RecordSessionEnded(state)
	c.logger.Info(context.Background(), "session ended",
		logger.String("session", c.sess.ID()),
		logger.String("state", state),
	)
	close(c.done)
}

func (c *Controller) publish() {
	snap := c.sess.Snapshot(c.cfg.Clock())
	c.snapshot.Store(&snap)
}
