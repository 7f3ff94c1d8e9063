package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admin_logins_total",
		Help: "Total number of successful console logins.",
	})
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admin_registrations_total",
		Help: "Total number of successful user registrations.",
	})
	userTogglesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admin_user_toggles_total",
		Help: "Total number of successful admin/banned flag toggles.",
	})
	resourceMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_resource_mutations_total",
		Help: "Total number of successful resource mutations.",
	}, []string{"action"})
	reservationMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_reservation_mutations_total",
		Help: "Total number of successful reservation mutations.",
	}, []string{"action"})
	assistantRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_assistant_requests_total",
		Help: "Total number of assistant panel requests.",
	}, []string{"kind", "status"})
)
