package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key kind and outcome (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_cache_lookups_total",
		Help: "Cache-aside lookups by key kind and outcome",
	}, []string{"kind", "outcome"})

	// NotFoundResponses counts Not-Found answers by the entity that was missing or hidden.
	NotFoundResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_not_found_total",
		Help: "Not-Found responses by entity",
	}, []string{"entity"})

	// OwnershipDenials counts mutations refused because the requester is not the author.
	OwnershipDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_ownership_denials_total",
		Help: "Mutations redirected because the requester is not the author",
	}, []string{"entity"})

	// CommentsRejected counts comment submissions dropped by validation.
	CommentsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogicum_comments_rejected_total",
		Help: "Comment submissions dropped by validation",
	})
)
