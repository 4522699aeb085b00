package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyboard_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_logins_total",
			Help: "Login attempts by status.",
		},
		[]string{"status"},
	)

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_token_verifications_total",
			Help: "Access token verification attempts by status.",
		},
		[]string{"status"},
	)

	imagesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyboard_images_uploaded_total",
		Help: "Total number of uploaded drawings.",
	})

	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyboard_stories_created_total",
		Help: "Total number of created stories.",
	})
)
