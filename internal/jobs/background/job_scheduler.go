package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"taldaor/internal/jobs"
)

// JobScheduler owns the gocron scheduler and the service's recurring jobs.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	reconciler *jobs.Reconciler
	registered map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(reconciler *jobs.Reconciler) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		reconciler: reconciler,
		registered: make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

// Start begins running the registered jobs.
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	reconcileJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.reconciler.Run, context.Background()),
		gocron.WithName("provisioning-reconciler"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create reconciler job: %v", err)
	} else {
		js.registered["provisioning-reconciler"] = reconcileJob
	}

	log.Printf("Registered %d background jobs", len(js.registered))
}

// AddJob registers an extra recurring job.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.registered[name] = job
	return nil
}

// JobNames lists the registered job names, for diagnostics.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.registered))
	for name := range js.registered {
		names = append(names, name)
	}
	return names
}
