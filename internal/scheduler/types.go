package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"postpilot/internal/compile"
	"postpilot/internal/eventbus"
	"postpilot/internal/storage"
	logx "postpilot/pkg/logx"
)

// Config controls the scheduler runtime.
type Config struct {
	Workers        int
	QueueSize      int
	DefaultTimeout time.Duration // per-fire; 0 disables
	HistorySize    int
	Timezone       string // IANA TZ, e.g. "Asia/Jakarta"
}

// Deliverer is what a job fire needs from the delivery side.
// publish.Dispatcher satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, text string) (string, error)
}

// task is one unit of queued work: either a job fire or a recurring
// maintenance run (the engagement tracker).
type task struct {
	id      string
	name    string
	timeout time.Duration
	run     func(ctx context.Context) error
}

// cronDef is a persisted recurring schedule (re-registered across restarts).
type cronDef struct {
	id      string
	name    string
	spec    string
	timeout time.Duration
	job     func(ctx context.Context) error
	entryID cron.EntryID
}

type HistoryItem struct {
	ID       string
	Name     string
	Started  time.Time
	Duration time.Duration
	Error    string
}

// Service owns the process-wide registry of active triggers: one one-shot
// timer per posting job plus recurring cron entries. Each fire is executed on
// the worker pool so a slow or failing delivery never delays another job.
type Service struct {
	mu sync.Mutex

	log   logx.Logger
	cfg   Config
	loc   *time.Location
	bus   eventbus.Bus
	store storage.Store

	deliver Deliverer

	parser cron.Parser
	c      *cron.Cron
	defs   []cronDef

	queue  chan task
	stopCh chan struct{}
	// stopDone is non-nil while a Stop() is in progress; closed when workers fully exit.
	stopDone chan struct{}

	runCtx    context.Context
	runCancel context.CancelFunc
	workerWG  sync.WaitGroup

	// one-shot job timers (timers are runtime; pending jobs are the
	// persistent definitions rebuilt on Start)
	tmu     sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]compile.Job
	vers    map[string]uint64

	hmu     sync.Mutex
	history []HistoryItem
}

// JobInfo is the operator-visible view of one registered posting job.
type JobInfo struct {
	ID        string
	RunID     string
	Day       int
	State     string
	TriggerAt time.Time
	Active    bool // a live timer exists for this id
	LastError string
}

type Snapshot struct {
	Timezone string
	Workers  int
	QueueLen int
	Jobs     []JobInfo
	Crons    []CronInfo
	History  []HistoryItem
}

type CronInfo struct {
	ID   string
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// JobEvent is the payload published on the event bus for job lifecycle events.
type JobEvent struct {
	JobID      string
	RunID      string
	Day        int
	State      string
	DeliveryID string
	Error      string
}
