// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "microerp"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	VentasRegistradas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ventas_registradas_total",
		Help:      "Sales created, by channel.",
	}, []string{"tipo"})

	PagosResueltos = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pagos_resueltos_total",
		Help:      "Online payments resolved, by result (validado, rechazado, expirado).",
	}, []string{"resultado"})

	StockInsuficiente = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ventas_rechazadas_stock_total",
		Help:      "Sales rejected because some line exceeded available stock.",
	})

	EventosDespachados = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_eventos_despachados_total",
		Help:      "Outbox events handed to the notification queue, by type.",
	}, []string{"tipo"})

	EventosFallidos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_eventos_fallidos_total",
		Help:      "Outbox events that exhausted their delivery attempts.",
	})

	NotificacionesEnviadas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notificaciones_enviadas_total",
		Help:      "Notifications delivered, by channel.",
	}, []string{"canal"})

	ConexionesWS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_conexiones",
		Help:      "Live notification WebSocket connections.",
	})
)
