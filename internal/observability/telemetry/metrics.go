package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation metrics
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ambience_intents_total",
		Help: "Total de intents processados",
	}, []string{"intent", "status"})

	TurnLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ambience_turn_latency_seconds",
		Help:    "Latência de processamento de um turno",
		Buckets: prometheus.DefBuckets,
	}, []string{"intent"})

	MatchResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ambience_match_results_total",
		Help: "Resultados do matcher por regra e tipo",
	}, []string{"rule", "kind"})

	TracksPlayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ambience_tracks_played_total",
		Help: "Total de faixas tocadas",
	})

	// Catalog metrics
	CatalogFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ambience_catalog_fetches_total",
		Help: "Buscas do catálogo remoto por resultado",
	}, []string{"status"})

	CatalogFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ambience_catalog_fetch_latency_seconds",
		Help:    "Latência da busca do catálogo remoto",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ambience_catalog_cache_total",
		Help: "Acessos ao cache compartilhado do catálogo",
	}, []string{"result"})

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ambience_http_requests_total",
		Help: "Total de requisições HTTP por rota, método e status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ambience_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP por rota",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
