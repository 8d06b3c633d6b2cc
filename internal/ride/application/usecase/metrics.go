package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// capacityOps считает операции над группами.
	// Labels: op (create, join, leave, remove, resize, cancel, delete), result (ok или имя ошибки)
	capacityOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxishare",
		Subsystem: "capacity",
		Name:      "operations_total",
		Help:      "Ride group capacity operations by outcome",
	}, []string{"op", "result"})

	// casConflicts считает проигранные CAS по version
	casConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxishare",
		Subsystem: "capacity",
		Name:      "cas_conflicts_total",
		Help:      "Lost compare-and-swap attempts on ride_groups.version",
	}, []string{"op"})

	// sideEffectFailures — уведомления и события, которые не удалось доставить
	sideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxishare",
		Subsystem: "capacity",
		Name:      "side_effect_failures_total",
		Help:      "Notifications and events that failed after a committed mutation",
	}, []string{"kind"})

	// capacityOverrides — админские Resize
	capacityOverrides = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taxishare",
		Subsystem: "capacity",
		Name:      "overrides_total",
		Help:      "Administrator capacity overrides",
	})
)
