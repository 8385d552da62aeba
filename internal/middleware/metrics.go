package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics HTTP 请求指标
// Metrics HTTP request metrics
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	crawlerHits     *prometheus.CounterVec
}

// NewMetrics 注册并返回请求指标集
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		crawlerHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "share_crawler_hits_total",
			Help: "Share page hits classified by visitor kind",
		}, []string{"kind"}),
	}
	registry.MustRegister(m.requestTotal, m.requestDuration, m.crawlerHits)
	return m
}

// Handler 请求计数与耗时统计中间件
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 使用路由模板而不是原始路径，避免标签基数爆炸
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// CountShareHit 记录分享页访问的访客类型
// kind: crawler / visitor
func (m *Metrics) CountShareHit(kind string) {
	m.crawlerHits.WithLabelValues(kind).Inc()
}
