// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace is the Prometheus namespace of the metrics.
const namespace = "spinnudp"

// metrics contains the datagram counters.
type metrics struct {
	BytesReceived     prometheus.Counter
	BytesSent         prometheus.Counter
	DatagramsReceived prometheus.Counter
	DatagramsSent     prometheus.Counter
	Errors            *prometheus.CounterVec
	ReceiveTimeouts   prometheus.Counter
}

// newMetrics creates the metrics and registers them with reg.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total payload bytes received.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total payload bytes sent.",
		}),
		DatagramsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "Total datagrams received.",
		}),
		DatagramsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_sent_total",
			Help:      "Total datagrams sent.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total send and receive errors by operation.",
		}, []string{"op"}),
		ReceiveTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receive_timeouts_total",
			Help:      "Total receives that timed out without data.",
		}),
	}
	reg.MustRegister(
		m.BytesReceived,
		m.BytesSent,
		m.DatagramsReceived,
		m.DatagramsSent,
		m.Errors,
		m.ReceiveTimeouts,
	)
	return m
}

// observeSend records the outcome of a send.
func (m *metrics) observeSend(size int, err error) {
	if err != nil {
		m.Errors.WithLabelValues("send").Inc()
		return
	}
	m.DatagramsSent.Inc()
	m.BytesSent.Add(float64(size))
}

// observeReceive records the outcome of a receive.
func (m *metrics) observeReceive(size int, err error) {
	switch {
	case err != nil:
		m.Errors.WithLabelValues("receive").Inc()
	case size <= 0:
		m.ReceiveTimeouts.Inc()
	default:
		m.DatagramsReceived.Inc()
		m.BytesReceived.Add(float64(size))
	}
}

// serveMetrics serves the metrics in gatherer on address in the
// background and returns the server, which the caller must close.
func serveMetrics(address string, gatherer prometheus.Gatherer, logger *slog.Logger) (*http.Server, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("err", err))
		}
	}()
	logger.Info("serving metrics", slog.String("address", listener.Addr().String()))
	return srv, nil
}
