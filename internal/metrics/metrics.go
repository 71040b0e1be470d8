package metrics

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "devitalik_cycles_total",
		Help: "Total agent loop cycles",
	})
	Actions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devitalik_actions_total",
		Help: "Total dispatched actions by name and outcome",
	}, []string{"action", "outcome"})
	CollaboratorErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devitalik_collaborator_errors_total",
		Help: "Total collaborator failures by error kind",
	}, []string{"kind"})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "devitalik_cycle_duration_seconds",
		Help:    "Cycle duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devitalik_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devitalik_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(Cycles, Actions, CollaboratorErrors, CycleDuration, CommandRuns, CommandErrors)
}

// IncAction records one dispatch result.
func IncAction(action, outcome string) { Actions.WithLabelValues(action, outcome).Inc() }

// IncCollaboratorError records a collaborator failure by kind.
func IncCollaboratorError(kind string) { CollaboratorErrors.WithLabelValues(kind).Inc() }

// ObserveCycleDuration records a cycle duration.
func ObserveCycleDuration(start time.Time) { CycleDuration.Observe(time.Since(start).Seconds()) }

// IncCommandRun increments the run counter for a CLI command.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError increments the error counter for a CLI command.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

// StartServer starts the observability HTTP server on addr (e.g., ":9090").
// status, when non-nil, backs /status with a JSON snapshot.
func StartServer(addr string, status func() any) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	if status != nil {
		r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(status())
		})
	}
	go func() { _ = http.ListenAndServe(addr, r) }()
}
