package logicdb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry *prometheus.Registry

	// Counters
	asks         prometheus.Counter
	askErrors    *prometheus.CounterVec
	rulesFired   prometheus.Counter
	factsDerived prometheus.Counter
	wsRequests   prometheus.Counter

	// Gauges
	kbFacts         prometheus.GaugeFunc
	kbRules         prometheus.GaugeFunc
	openConnections prometheus.Gauge

	// Latency and sizes
	askLatency prometheus.Summary
	answerSize prometheus.Summary
}

func newMetrics(solver *Solver) *metrics {
	m := &metrics{
		asks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "asks_total",
				Help: "number of questions asked",
			},
		),
		askErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ask_errors_total",
				Help: "number of questions that failed, by error kind",
			},
			[]string{"kind"},
		),
		rulesFired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rules_fired_total",
				Help: "number of rule applications across all questions",
			},
		),
		factsDerived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "facts_derived_total",
				Help: "number of facts materialized from rules across all questions",
			},
		),
		wsRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ws_requests_total",
				Help: "number of questions received over websocket connections",
			},
		),
		kbFacts: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "knowledge_base_facts",
				Help: "number of stored facts in the loaded knowledge base",
			},
			func() float64 {
				return float64(len(solver.kb.Facts()))
			},
		),
		kbRules: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "knowledge_base_rules",
				Help: "number of rules in the loaded knowledge base",
			},
			func() float64 {
				return float64(len(solver.kb.Rules()))
			},
		),
		openConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "open_connections",
				Help: "number of websocket connections currently open",
			},
		),
		askLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "ask_latency_ns",
				Help: "latency to resolve a question",
			},
		),
		answerSize: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "answer_size",
				Help: "number of predicates in an answer",
			},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	reg.MustRegister(m.asks)
	reg.MustRegister(m.askErrors)
	reg.MustRegister(m.rulesFired)
	reg.MustRegister(m.factsDerived)
	reg.MustRegister(m.wsRequests)
	reg.MustRegister(m.kbFacts)
	reg.MustRegister(m.kbRules)
	reg.MustRegister(m.openConnections)
	reg.MustRegister(m.askLatency)
	reg.MustRegister(m.answerSize)
	return m
}
