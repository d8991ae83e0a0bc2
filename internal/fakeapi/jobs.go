package fakeapi

import (
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// JobStep is the job resource served for one poll.
type JobStep struct {
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NotStarted is a queued job.
func NotStarted() JobStep { return JobStep{Status: "NOT_STARTED"} }

// Running is a job in progress.
func Running() JobStep { return JobStep{Status: "RUNNING"} }

// Done is a finished job carrying result.
func Done(result any) JobStep { return JobStep{Status: "DONE", Result: result} }

// Failed is a job that ended in ERROR with msg.
func Failed(msg string) JobStep { return JobStep{Status: "ERROR", Error: msg} }

type job struct {
	steps []JobStep
	polls int
}

// StartJob registers a job whose successive polls return steps in order; the
// last step repeats once reached. It returns the job location path.
func (s *Server) StartJob(steps ...JobStep) string {
	if len(steps) == 0 {
		steps = []JobStep{Done(nil)}
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.jobs[id] = &job{steps: steps}
	s.mu.Unlock()
	return s.base + "jobs/" + id
}

// Polls reports how many times the job at location was fetched.
func (s *Server) Polls(location string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[path.Base(location)]; ok {
		return j.polls
	}
	return 0
}

// ExpireJob forgets the job at location so further polls answer 404.
func (s *Server) ExpireJob(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, path.Base(location))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["jobId"]
	s.mu.Lock()
	j, ok := s.jobs[id]
	var step JobStep
	if ok {
		i := j.polls
		if i >= len(j.steps) {
			i = len(j.steps) - 1
		}
		step = j.steps[i]
		j.polls++
	}
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "job "+id+" not found")
		return
	}
	s.cfg.Log.Debug().Str("job", id).Str("status", step.Status).Msg("job polled")
	s.writeJSON(w, http.StatusOK, step)
}

// accepted answers 202 pointing at a new job.
func (s *Server) accepted(w http.ResponseWriter, steps ...JobStep) {
	w.Header().Set("Location", s.StartJob(steps...))
	w.WriteHeader(http.StatusAccepted)
}
