// Package daemon implements C12: the Controller state machine that owns
// every other component (config store, activity ring, job queue, worker
// pool, watch dispatcher, rescan ticker) and mediates every reconfiguration,
// plus the loopback command-surface server that exposes the controller to
// an external tray UI.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"heic-readyd/internal/activitylog"
	"heic-readyd/internal/config"
	"heic-readyd/internal/jobqueue"
	"heic-readyd/internal/rescan"
	"heic-readyd/internal/trash"
	"heic-readyd/internal/transcode"
	"heic-readyd/internal/watch"
	"heic-readyd/internal/workerpool"
)

// State is one of the controller's lifecycle states.
type State string

const (
	StateInitializing  State = "initializing"
	StateRunning       State = "running"
	StatePaused        State = "paused"
	StateReconfiguring State = "reconfiguring"
	StateShuttingDown  State = "shutting_down"
)

// NotificationType names a push message delivered to command-surface
// subscribers.
type NotificationType string

const (
	NotificationPausedChanged NotificationType = "paused-changed"
	NotificationLocaleChanged NotificationType = "locale-changed"
	NotificationLogsAppended  NotificationType = "logs-appended"
)

// Notification is broadcast to every connected command-surface client.
type Notification struct {
	Type NotificationType `json:"type"`
	Data any              `json:"data,omitempty"`
}

// Controller owns the config store, activity ring, job queue, worker pool,
// watch dispatcher, and rescan ticker, and mediates every reconfiguration
// between them. It is the one thing in the process holding global mutable
// state; everything else is constructed by, and passed down from, Run.
type Controller struct {
	store      *config.Store
	log        *activitylog.Ring
	transcoder transcode.Transcoder
	mover      trash.Mover
	logger     *slog.Logger
	workers    int

	mu         sync.Mutex
	state      State
	lastCfg    config.Config
	queue      *jobqueue.Queue
	dispatcher *watch.Dispatcher
	watchStop  context.CancelFunc
	rescanStop context.CancelFunc
	poolStop   context.CancelFunc
	wg         sync.WaitGroup
	notify     func(Notification)
}

// New builds a Controller. Call Run to start it.
func New(store *config.Store, log *activitylog.Ring, transcoder transcode.Transcoder, mover trash.Mover, logger *slog.Logger) *Controller {
	return &Controller{
		store:      store,
		log:        log,
		transcoder: transcoder,
		mover:      mover,
		logger:     logger,
		workers:    workerpool.DefaultWorkers,
		state:      StateInitializing,
		queue:      jobqueue.New(),
		notify:     func(Notification) {},
	}
}

// SetNotifier installs the callback used to push notifications to the
// command surface. Must be called before Run.
func (c *Controller) SetNotifier(fn func(Notification)) {
	if fn == nil {
		fn = func(Notification) {}
	}
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Queue returns the controller's job queue, for a command surface endpoint
// that needs to report depth, or nil-safe tests.
func (c *Controller) Queue() *jobqueue.Queue { return c.queue }

// Log returns the controller's activity ring.
func (c *Controller) Log() *activitylog.Ring { return c.log }

// Store returns the controller's config store.
func (c *Controller) Store() *config.Store { return c.store }

// Run applies the current config, starts the worker pool, watch dispatcher,
// and rescan ticker, and then blocks, reconfiguring on every config change
// until ctx is canceled. It returns once shutdown has completed: pending
// jobs dropped, in-flight jobs allowed to finish, all goroutines joined.
func (c *Controller) Run(ctx context.Context) error {
	cfg := c.store.Snapshot()

	pool := &workerpool.Pool{
		Queue:      c.queue,
		Snapshot:   c.store.Snapshot,
		Transcoder: c.transcoder,
		Mover:      c.mover,
		Log:        c.log,
		Logger:     c.logger,
		Workers:    c.workers,
	}
	poolCtx, poolCancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.poolStop = poolCancel
	c.mu.Unlock()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		pool.Run(poolCtx)
	}()

	if err := c.startWatching(ctx, cfg); err != nil {
		poolCancel()
		return fmt.Errorf("daemon: initial watch start: %w", err)
	}

	c.mu.Lock()
	c.lastCfg = cfg
	c.setStateLocked(runningOrPaused(cfg))
	c.mu.Unlock()

	sub := c.store.Subscribe()
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case newCfg := <-sub:
			c.reconfigure(ctx, newCfg)
		}
	}
}

func runningOrPaused(cfg config.Config) State {
	if cfg.Paused {
		return StatePaused
	}
	return StateRunning
}

func (c *Controller) setStateLocked(s State) {
	c.state = s
}

func (c *Controller) startWatching(ctx context.Context, cfg config.Config) error {
	dispatcher, err := watch.New(c.queue, c.logger)
	if err != nil {
		return err
	}
	if len(cfg.WatchFolders) > 0 {
		if err := dispatcher.Start(cfg.WatchFolders, cfg.RecursiveWatch); err != nil {
			dispatcher.Close()
			return err
		}
	}

	rescanCtx, rescanCancel := context.WithCancel(ctx)
	ticker := &rescan.Ticker{
		Queue: c.queue,
		Roots: func() ([]string, bool) {
			snap := c.store.Snapshot()
			return snap.WatchFolders, snap.RecursiveWatch
		},
		Interval: func() time.Duration {
			return time.Duration(c.store.Snapshot().RescanIntervalSecs) * time.Second
		},
		Logger: c.logger,
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker.Run(rescanCtx)
	}()

	c.mu.Lock()
	c.dispatcher = dispatcher
	c.watchStop = func() { dispatcher.Stop(); dispatcher.Close() }
	c.rescanStop = rescanCancel
	c.mu.Unlock()
	return nil
}

// reconfigure applies a new config snapshot. Watching is only torn down and
// rebuilt when watch_folders, recursive_watch, or rescan_interval_secs
// changed; pause and locale changes are applied in place and only emit a
// notification.
func (c *Controller) reconfigure(ctx context.Context, newCfg config.Config) {
	c.mu.Lock()
	old := c.lastCfg
	c.mu.Unlock()

	watchAffecting := old.RecursiveWatch != newCfg.RecursiveWatch ||
		old.RescanIntervalSecs != newCfg.RescanIntervalSecs ||
		!sameFolders(old.WatchFolders, newCfg.WatchFolders)

	if watchAffecting {
		c.mu.Lock()
		c.setStateLocked(StateReconfiguring)
		watchStop, rescanStop := c.watchStop, c.rescanStop
		c.mu.Unlock()

		if watchStop != nil {
			watchStop()
		}
		if rescanStop != nil {
			rescanStop()
		}

		if err := c.startWatching(ctx, newCfg); err != nil && c.logger != nil {
			c.logger.Warn("daemon: reconfigure watch restart failed", "error", err)
		}
	}

	c.mu.Lock()
	c.lastCfg = newCfg
	c.setStateLocked(runningOrPaused(newCfg))
	c.mu.Unlock()

	if old.Paused != newCfg.Paused {
		c.notify(Notification{Type: NotificationPausedChanged, Data: map[string]bool{"paused": newCfg.Paused}})
	}
	if old.Locale != newCfg.Locale {
		c.notify(Notification{Type: NotificationLocaleChanged, Data: map[string]string{"locale": string(newCfg.Locale)}})
	}
}

func sameFolders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.setStateLocked(StateShuttingDown)
	watchStop, rescanStop, poolStop := c.watchStop, c.rescanStop, c.poolStop
	c.mu.Unlock()

	if watchStop != nil {
		watchStop()
	}
	if rescanStop != nil {
		rescanStop()
	}
	// Dropping pending jobs without interrupting in-flight ones: workers
	// keep running off poolCtx until it is canceled below, at which point
	// Claim returns the cancellation error only after any job already in
	// process has completed.
	c.queue.DrainPending()
	if poolStop != nil {
		poolStop()
	}
	c.wg.Wait()
}
