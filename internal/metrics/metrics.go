// Package metrics регистрирует прометеевские счётчики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lookups счётчик попыток поиска по исходу:
	// success, cache_hit, not_found, api_error, http_error, timeout, network_error.
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookupgate_lookups_total",
		Help: "Lookup attempts by outcome.",
	}, []string{"outcome"})

	// EntitlementDenials счётчик отказов из-за исчерпанного лимита.
	EntitlementDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookupgate_entitlement_denials_total",
		Help: "Lookup attempts denied by the entitlement check.",
	})

	// RateLimited счётчик молча отброшенных запросов пер-пользовательским лимитером.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookupgate_rate_limited_total",
		Help: "Inbound lookup events silently dropped by the per-user limiter.",
	})

	// StoreLoadFailures счётчик деградаций хранилища до пустого состояния.
	StoreLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookupgate_store_load_failures_total",
		Help: "Times the store file could not be read and an empty store was served.",
	})
)
