package dashes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SendPacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashes_send_packets_total",
		Help: "Total number of payloads sent",
	}, []string{"transport"})

	SendBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashes_send_bytes_total",
		Help: "Total number of payload bytes sent",
	}, []string{"transport"})

	RecvPacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashes_recv_packets_total",
		Help: "Total number of payloads received",
	}, []string{"transport"})

	RecvBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashes_recv_bytes_total",
		Help: "Total number of payload bytes received",
	}, []string{"transport"})

	RecvSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashes_recv_skips_total",
		Help: "Total number of received payloads out of sequence",
	}, []string{"transport"})

	RecvInvalidTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashes_recv_invalid_total",
		Help: "Total number of received payloads that failed to decode",
	}, []string{"transport"})
)
