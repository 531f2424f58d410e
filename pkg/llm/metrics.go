package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// llmRequestsTotal counts chat-completion calls by role (scenario, scripts)
// and outcome (ok, error).
var llmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "eroom_llm_requests_total",
	Help: "Count of chat-completion calls by role and outcome.",
}, []string{"role", "outcome"})
