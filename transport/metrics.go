// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package transport

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "volrest",
			Name:      "request_seconds",
			Help:      "Seconds spent performing an object-service HTTP request",
			Buckets:   prometheus.ExponentialBuckets(math.Pow(2, -8), 2, 16),
		},
		[]string{"method", "status_class"})

	responseBufferBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "volrest",
			Name:      "response_buffer_bytes",
			Help:      "Bytes held in the process-wide response buffer after the most recent request",
		})

	inFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "volrest",
			Name:      "in_flight_requests",
			Help:      "Number of object-service HTTP requests currently in flight",
		})
)

func init() {
	prometheus.MustRegister(requestSeconds)
	prometheus.MustRegister(responseBufferBytes)
	prometheus.MustRegister(inFlightRequests)
}
