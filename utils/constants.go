package utils

import (
	"time"
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request context keys set by handlers and read by flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
	ArtistIDKey   ContextKey = "artist_id"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// Generation constants
const (
	// DefaultVariationCount is how many variations one generation request produces
	DefaultVariationCount = 3

	// MaxVariationCount caps caller-requested variations
	MaxVariationCount = 5

	// DefaultMaxLength is the default token budget per variation
	DefaultMaxLength = 150

	// GenerationCacheTTL is how long memoized generation results stay valid
	GenerationCacheTTL = 1 * time.Hour

	// BackendRateLimitWindow is the rolling window for outbound AI backend calls
	BackendRateLimitWindow = 60 * time.Second

	// BackendRateLimitQuota is the number of backend calls allowed per window
	BackendRateLimitQuota = 30
)

// Upload constants
const (
	// MaxUploadSizeBytes caps questionnaire file uploads (8MB)
	MaxUploadSizeBytes = 8 * 1024 * 1024
)
