// Package scheduler is the posting runtime: it owns the process-wide registry
// of active triggers and executes job fires on a worker pool.
//
// # Triggers
//
// Each posting job gets a one-shot timer keyed by its deterministic id.
// Registration is an upsert: re-registering an id replaces the previous timer,
// so at most one timer exists per id at any time. Recurring work (the
// engagement tracker) uses cron entries registered under a stable name.
//
// # Concurrency and isolation
//
// Fires are queued to a worker pool, so a slow or failing delivery for one
// job never delays another job's fire time. One fire is one attempt: a failed
// occurrence is terminal for that job and is surfaced via the persisted job
// state and the event bus, never by aborting the runtime.
//
// # Lifecycle
//
// Pause cancels a single job's timer; Resume re-registers it; StopAll cancels
// every timer owned by a run. Stop() cancels all triggers and waits for
// in-flight fires to complete. Pending job definitions survive a stop/start
// cycle: timers are rebuilt on Start().
package scheduler
