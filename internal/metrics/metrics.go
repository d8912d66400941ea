/*
 * MIT License
 *
 * Copyright (c) 2026 Amine Sabouar
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics exposes the server's Prometheus collectors: active
// connections, requests served, CGI jobs in flight, responses by status
// class, and live sessions. Not a spec module (SPEC_FULL §3) — ambient observability the
// teacher ships alongside every long-running service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every collector the reactor and its collaborators
// update. Built once in cmd/webserv and threaded through by reference.
type Registry struct {
	ActiveConnections prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec
	CGIJobsInFlight   prometheus.Gauge
	ErrorsByClass     *prometheus.CounterVec
	SessionsLive      prometheus.Gauge
}

// New registers every collector on reg and returns the bundle. Passing a
// fresh prometheus.NewRegistry() per process keeps tests free of the
// global default registry's cross-test collisions.
func New(reg *prometheus.Registry) *Registry {
	m := &Registry{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "webserv",
			Name:      "active_connections",
			Help:      "Number of client connections currently tracked by the connection table.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webserv",
			Name:      "requests_total",
			Help:      "Requests dispatched to a method handler, by method.",
		}, []string{"method"}),
		CGIJobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "webserv",
			Name:      "cgi_jobs_in_flight",
			Help:      "CGI jobs currently in the Writing or Reading phase.",
		}),
		ErrorsByClass: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webserv",
			Name:      "responses_by_status_class_total",
			Help:      "Responses emitted, bucketed by HTTP status class (2xx/3xx/4xx/5xx).",
		}, []string{"class"}),
		SessionsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "webserv",
			Name:      "sessions_live",
			Help:      "Entries currently held by the session manager (expired-but-unpurged included).",
		}),
	}

	reg.MustRegister(
		m.ActiveConnections,
		m.RequestsTotal,
		m.CGIJobsInFlight,
		m.ErrorsByClass,
		m.SessionsLive,
	)
	return m
}

// ObserveStatus increments the status-class counter for an HTTP status code.
func (m *Registry) ObserveStatus(status int) {
	class := "other"
	switch {
	case status >= 200 && status < 300:
		class = "2xx"
	case status >= 300 && status < 400:
		class = "3xx"
	case status >= 400 && status < 500:
		class = "4xx"
	case status >= 500 && status < 600:
		class = "5xx"
	}
	m.ErrorsByClass.WithLabelValues(class).Inc()
}
