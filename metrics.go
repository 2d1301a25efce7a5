/*
Open Source Initiative OSI - The MIT License (MIT):Licensing

The MIT License (MIT)
Copyright (c) 2013 DutchCoders <http://github.com/dutchcoders/>

Permission is hereby granted, free of charge, to any person obtaining a copy of
this software and associated documentation files (the "Software"), to deal in
the Software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
of the Software, and to permit persons to whom the Software is furnished to do
so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package clamd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts check outcomes and times the individual protocol steps.
type Metrics struct {
	checks *prometheus.CounterVec
	steps  *prometheus.HistogramVec
}

// NewMetrics creates the check metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clamdmon_checks_total",
			Help: "Total number of clamd checks by outcome",
		}, []string{"outcome"}),

		steps: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clamdmon_step_duration_seconds",
			Help:    "Time spent in each step of a clamd check",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 20), // 0.1ms to ~52s
		}, []string{"step"}),
	}
}

func (m *Metrics) observe(r *Report) {
	if m == nil {
		return
	}

	m.checks.WithLabelValues(r.Outcome.String()).Inc()
	for step, d := range r.Steps {
		m.steps.WithLabelValues(step).Observe(d.Seconds())
	}
}
