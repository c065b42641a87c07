package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	UpdatesTotal   prometheus.Counter
	AdmittedTotal  prometheus.Counter
	IgnoredTotal   prometheus.Counter
	RateLimited    prometheus.Counter
	ProviderErrors prometheus.Counter
	RepliesTotal   prometheus.Counter
}

var (
	once   sync.Once
	global *Metrics
)

func Global() *Metrics {
	once.Do(func() {
		global = &Metrics{
			UpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zozabot",
				Name:      "telegram_updates_total",
				Help:      "Total telegram updates received",
			}),
			AdmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zozabot",
				Name:      "messages_admitted_total",
				Help:      "Total messages that passed the admission filter",
			}),
			IgnoredTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zozabot",
				Name:      "messages_ignored_total",
				Help:      "Total group messages silently ignored",
			}),
			RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zozabot",
				Name:      "messages_rate_limited_total",
				Help:      "Total messages rejected by the per-user rate limiter",
			}),
			ProviderErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zozabot",
				Name:      "provider_failures_total",
				Help:      "Total completion provider calls that ended in a fallback",
			}),
			RepliesTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zozabot",
				Name:      "replies_total",
				Help:      "Total replies sent back to chats",
			}),
		}
		prometheus.MustRegister(
			global.UpdatesTotal,
			global.AdmittedTotal,
			global.IgnoredTotal,
			global.RateLimited,
			global.ProviderErrors,
			global.RepliesTotal,
		)
	})
	return global
}
