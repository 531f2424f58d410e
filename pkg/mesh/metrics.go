package mesh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// meshSubmissionsTotal counts text-to-3D submissions by outcome: "ok" or a
// sentinel kind.
var meshSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "eroom_mesh_submissions_total",
	Help: "Count of text-to-3D submissions by outcome.",
}, []string{"outcome"})
