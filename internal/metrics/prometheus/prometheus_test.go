package prometheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/txplain-labs/txplain/internal/logger"
	"github.com/txplain-labs/txplain/internal/metrics/metricsTypes"
)

func Test_UnexpectedLabelsParsing(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	pmc, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
		Metrics: metricsTypes.MetricTypes,
	}, l)
	assert.Nil(t, err)

	t.Run("Should return no error for all labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Incr, metricsTypes.Metric_Incr_HttpRequest, []metricsTypes.MetricsLabel{
			{Name: "method", Value: "POST"},
			{Name: "path", Value: "/v1/explain"},
			{Name: "status_code", Value: "200"},
		})
		assert.Nil(t, err)
	})
	t.Run("Should return no error for a subset of labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Incr, metricsTypes.Metric_Incr_PaymentVerification, []metricsTypes.MetricsLabel{
			{Name: "state", Value: "CONFIRMED"},
		})
		assert.Nil(t, err)
	})
	t.Run("Should return an error for unexpected labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Incr, metricsTypes.Metric_Incr_PaymentVerification, []metricsTypes.MetricsLabel{
			{Name: "state", Value: "CONFIRMED"},
			{Name: "unexpectedLabel", Value: "unexpectedValue"},
		})
		assert.NotNil(t, err)
	})
}
