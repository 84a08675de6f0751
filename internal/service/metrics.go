package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Field keys the metrics observer reads from UseCaseEvent.Fields.
const (
	FieldSchedule       = "schedule"
	FieldOverSubscribed = "oversubscribed_slots"
)

type metricsUseCaseObserver struct {
	useCases       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	overSubscribed *prometheus.GaugeVec
}

// NewMetricsUseCaseObserver registers use-case metrics on reg and records
// every observed event.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) UseCaseObserver {
	factory := promauto.With(reg)
	return &metricsUseCaseObserver{
		useCases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_use_cases_total",
				Help: "Service use cases by name and outcome",
			},
			[]string{"use_case", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadence_use_case_duration_seconds",
				Help:    "Service use case duration",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
			},
			[]string{"use_case"},
		),
		overSubscribed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cadence_slots_oversubscribed",
				Help: "Slots currently over capacity in a schedule's working revision",
			},
			[]string{"schedule"},
		),
	}
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.useCases.WithLabelValues(event.Name, outcomeLabel(event.Err)).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	name, ok := event.Fields[FieldSchedule].(string)
	if !ok || name == "" {
		return
	}
	if n, ok := event.Fields[FieldOverSubscribed].(int); ok {
		o.overSubscribed.WithLabelValues(name).Set(float64(n))
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrRateIncompatible):
		return "rate_incompatible"
	case errors.Is(err, domain.ErrConfirmationDeclined):
		return "declined"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}
