package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var admissionsAllowed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wardend_admissions_allowed",
	Help: "Number of admission checks that allowed the action",
}, []string{"category"})

var admissionsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wardend_admissions_denied",
	Help: "Number of admission checks that denied the action",
}, []string{"category"})

var actionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wardend_actions_recorded",
	Help: "Number of actions recorded against counters",
}, []string{"category"})

var spamChecks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_spam_checks",
	Help: "Number of spam classification checks",
})

var spamFlagged = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_spam_flagged",
	Help: "Number of spam checks that flagged content",
})

var shadowbansApplied = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_shadowbans_applied",
	Help: "Number of shadowbans applied",
})

var appealsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_appeals_submitted",
	Help: "Number of appeals submitted",
})

var appealsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_appeals_processed",
	Help: "Number of appeals processed by moderators",
})

var cleanupRuns = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_cleanup_runs",
	Help: "Number of counter cleanup runs",
})

var cleanupBucketsRemoved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wardend_cleanup_buckets_removed",
	Help: "Number of expired counter buckets removed by cleanup",
})
