package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	StatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status advancements",
	}, []string{"status"})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications sent",
	}, []string{"channel"})

	NotificationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of notification send failures",
	}, []string{"channel"})

	NotificationsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_skipped_total",
		Help: "Total number of channel sends skipped by preference or missing contact",
	}, []string{"channel"})

	PendingSweepProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_sweep_processed_total",
		Help: "Total number of pending notifications processed by the sweep",
	})

	PendingSweepLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notification_sweep_latency_seconds",
		Help:    "Latency of a pending-notification sweep",
		Buckets: prometheus.DefBuckets,
	})

	FollowUpsScheduledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "follow_ups_scheduled_total",
		Help: "Total number of follow-up notifications scheduled",
	})

	QuotesCalculatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotes_calculated_total",
		Help: "Total number of framing price quotes calculated",
	})

	ChatMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of chat messages processed",
	}, []string{"intent"})

	StatusLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_lookups_total",
		Help: "Total number of order status lookups",
	}, []string{"result"})

	ChannelSendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "channel_send_latency_seconds",
		Help:    "Latency of outbound email/SMS provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
