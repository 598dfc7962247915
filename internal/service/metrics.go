package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "files_uploads_total",
		Help: "Number of stored uploads by file type",
	}, []string{"type"})

	enqueueFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "files_thumbnail_enqueue_failures_total",
		Help: "Image uploads whose thumbnail job could not be enqueued",
	})

	thumbnailJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "files_thumbnail_jobs_total",
		Help: "Processed thumbnail jobs by result",
	}, []string{"result"})

	thumbnailsRenderedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "files_thumbnails_rendered_total",
		Help: "Thumbnails written by width and result",
	}, []string{"width", "result"})
)
