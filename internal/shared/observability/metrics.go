package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "laerad_parsing_seconds",
		Help:    "Time spent parsing a Ruby source file.",
		Buckets: prometheus.DefBuckets,
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "laerad_analysis_seconds",
		Help:    "Time spent on analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laerad_files_analyzed_total",
		Help: "Total number of files run through the analyzer.",
	})

	ParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laerad_parse_failures_total",
		Help: "Total number of files skipped because they could not be parsed.",
	})

	ViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laerad_violations_total",
		Help: "Total number of single-use identifiers reported.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laerad_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ReviewCommentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laerad_review_comments_total",
		Help: "Total number of review comments produced.",
	}, []string{"outcome"})

	HistoryWriteRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laerad_history_write_retries_total",
		Help: "Total number of history store writes retried after a lock error.",
	})
)

// Violation kinds used as the ViolationsTotal label.
const (
	KindVariable = "variable"
	KindMethod   = "method"
)
