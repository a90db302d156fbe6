// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BoardMetrics はメトリクス収集のインターフェース。
// ハンドラー層から利用する。
type BoardMetrics interface {
	RecordPostCreated()
	RecordPostDeleted()
	RecordTokenRejected()
	RecordDeleteDenied()
	RecordHTTPStatus(statusCode int)
	RecordRenderLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	postsCreated  prometheus.Counter
	postsDeleted  prometheus.Counter
	tokenRejected prometheus.Counter
	deleteDenied  prometheus.Counter
	httpStatus    *prometheus.CounterVec
	renderLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretboard_posts_created_total",
			Help: "作成された投稿の合計数",
		}),
		postsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretboard_posts_deleted_total",
			Help: "削除された投稿の合計数",
		}),
		tokenRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretboard_token_rejected_total",
			Help: "ワンタイムトークン不一致で拒否したリクエストの合計数",
		}),
		deleteDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretboard_delete_denied_total",
			Help: "権限不足で拒否した削除リクエストの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		renderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "secretboard_render_latency_seconds",
			Help:    "投稿一覧ページ描画のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.postsCreated,
		c.postsDeleted,
		c.tokenRejected,
		c.deleteDenied,
		c.httpStatus,
		c.renderLatency,
	)

	return c
}

// RecordPostCreated は投稿の作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordPostDeleted は投稿の削除を記録する。
func (c *Collector) RecordPostDeleted() {
	c.postsDeleted.Inc()
}

// RecordTokenRejected はワンタイムトークン不一致による拒否を記録する。
func (c *Collector) RecordTokenRejected() {
	c.tokenRejected.Inc()
}

// RecordDeleteDenied は権限不足による削除拒否を記録する。
func (c *Collector) RecordDeleteDenied() {
	c.deleteDenied.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRenderLatency は投稿一覧描画のレイテンシを記録する。
func (c *Collector) RecordRenderLatency(duration time.Duration) {
	c.renderLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
