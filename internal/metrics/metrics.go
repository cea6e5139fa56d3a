// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordRequest(method, route string, statusCode int)
	RecordAllocationCreated()
	RecordChatRelay(statusCode int, duration time.Duration)
	RecordSessionsCleaned(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	requests           *prometheus.CounterVec
	allocationsCreated prometheus.Counter
	chatRelayStatus    *prometheus.CounterVec
	chatRelayLatency   prometheus.Histogram
	sessionsCleaned    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・ルート・ステータス別）",
		}, []string{"method", "route", "status_code"}),
		allocationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_allocations_created_total",
			Help: "登録されたアロケーションの合計数",
		}),
		chatRelayStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_chat_relay_status_total",
			Help: "チャット中継の上流ステータスコード別の合計数",
		}, []string{"status_code"}),
		chatRelayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_chat_relay_latency_seconds",
			Help:    "チャット中継のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_sessions_cleaned_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.allocationsCreated,
		c.chatRelayStatus,
		c.chatRelayLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordRequest はHTTPリクエストを記録する。
func (c *Collector) RecordRequest(method, route string, statusCode int) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}

// RecordAllocationCreated はアロケーション登録を記録する。
func (c *Collector) RecordAllocationCreated() {
	c.allocationsCreated.Inc()
}

// RecordChatRelay はチャット中継の結果を記録する。
// 接続失敗はステータスコード0として記録される。
func (c *Collector) RecordChatRelay(statusCode int, duration time.Duration) {
	c.chatRelayStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.chatRelayLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
