package cron

import "context"

// Job is a scheduled task run by the worker loop.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs a worker cycle runs, in registration order.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the given jobs. Nil jobs are
// dropped.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register appends a job to the cycle.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
