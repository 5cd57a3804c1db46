package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_messages_received_total",
		Help: "Anonymous messages delivered to an inbox.",
	})
	messagesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_messages_rejected_total",
		Help: "Anonymous messages refused at intake.",
	}, []string{"reason"})
	messagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_messages_deleted_total",
		Help: "Messages removed by their owner.",
	})
	suggestRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_suggest_requests_total",
		Help: "Suggestion proxy invocations by outcome.",
	}, []string{"outcome"})
)
