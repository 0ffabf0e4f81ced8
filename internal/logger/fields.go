package logger

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches the keys set by middleware.JWTAuthMiddleware)
	FieldClientID = "client_id"

	// Service
	FieldService = "service"

	// Lookup
	FieldOperation = "operation"
	FieldCacheKey  = "cache_key"
	FieldOutcome   = "outcome"
	FieldUpstream  = "upstream_status"
)
