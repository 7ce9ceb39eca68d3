package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "remora_event_duration_sec",
	Help: "Total duration of comment event processing",
})

var eventProcessCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "remora_event_processed",
	Help: "Number of comment events processed",
})

var eventErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "remora_event_errors",
	Help: "Number of events which failed processing",
})

var eventAbortCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "remora_event_aborted",
	Help: "Number of events which ended without a removal, by pipeline stage",
}, []string{"stage"})

var actionRemovalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "remora_post_removals",
	Help: "Number of posts removed",
})

var actionFlairCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "remora_post_flairs",
	Help: "Number of post flairs applied",
})

var actionStickyCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "remora_removal_comments",
	Help: "Number of removal explanation comments stickied",
})

var actionNoticeCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "remora_skip_notices",
	Help: "Number of skip notifications messaged to triggering users",
})
