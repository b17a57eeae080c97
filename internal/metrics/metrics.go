package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

var (
	// AssetUploads counts uploaded asset binaries by slot.
	AssetUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_asset_uploads_total",
		Help: "Number of asset binaries stored, by slot.",
	}, []string{"slot"})

	// AssetUploadFailures counts rejected or failed asset uploads by slot.
	AssetUploadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_asset_upload_failures_total",
		Help: "Number of asset uploads rejected or failed, by slot.",
	}, []string{"slot"})

	// EventsPublished counts asset-change events handed to the broker.
	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_asset_events_published_total",
		Help: "Number of asset-change events published.",
	})
)
