package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostsEditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_edited_total",
			Help: "Total number of posts edited",
		},
	)

	CommentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	FollowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_follow_operations_total",
			Help: "Total number of follow edge operations",
		},
		[]string{"operation"},
	)

	FeedPagesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_feed_pages_served_total",
			Help: "Total number of feed pages assembled by filter mode",
		},
		[]string{"filter"},
	)

	LiveClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_live_clients_connected",
			Help: "Number of connected live feed websocket clients",
		},
	)

	LiveEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_live_events_dropped_total",
			Help: "Total number of live feed events dropped on slow clients",
		},
	)
)
