package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
	Flush()
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_HttpRequest          = "rpc.http.request"
	Metric_Incr_ProviderProbeFailed  = "providerPool.probe.failed"
	Metric_Incr_ProviderExhausted    = "providerPool.exhausted"
	Metric_Incr_PaymentVerification  = "payment.verification"
	Metric_Incr_ExplanationRequested = "explainer.requested"

	Metric_Gauge_CurrentBlockHeight = "currentBlockHeight"

	Metric_Timing_HttpDuration                = "rpc.http.duration"
	Metric_Timing_PaymentVerificationDuration = "payment.verification.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name: Metric_Incr_HttpRequest,
			Labels: []string{
				"method",
				"path",
				"status_code",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_ProviderProbeFailed,
			Labels: []string{
				"operation",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_ProviderExhausted,
			Labels: []string{
				"operation",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_PaymentVerification,
			Labels: []string{
				"state",
			},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ExplanationRequested,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_CurrentBlockHeight,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name: Metric_Timing_HttpDuration,
			Labels: []string{
				"method",
				"path",
			},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_PaymentVerificationDuration,
			Labels: []string{},
		},
	},
}
