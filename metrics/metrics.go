package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"amazon-tracker/storage"
	"amazon-tracker/utils"
)

var productsDesc = prometheus.NewDesc(
	"amazon_tracker_products",
	"Stored product rows by keyword",
	[]string{"keyword"},
	nil,
)

// ProductCollector is a custom Prometheus collector that reads per-keyword
// row counts from the database on each scrape.
type ProductCollector struct {
	store  storage.ProductReader
	logger *utils.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *ProductCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- productsDesc
}

// Collect queries the database for all keywords and emits their row counts
// as gauges.
func (c *ProductCollector) Collect(ch chan<- prometheus.Metric) {
	keywords, err := c.store.ListKeywords(context.Background())
	if err != nil {
		c.logger.Error("Failed to collect product metrics: %v", err)
		return
	}
	for _, k := range keywords {
		ch <- prometheus.MustNewConstMetric(
			productsDesc,
			prometheus.GaugeValue,
			float64(k.Count),
			k.Keyword,
		)
	}
}

var registerOnce sync.Once

// Init registers the custom collector. Must be called once at startup.
func Init(store storage.ProductReader, logger *utils.Logger) {
	registerOnce.Do(func() {
		prometheus.MustRegister(&ProductCollector{store: store, logger: logger})
	})
}
