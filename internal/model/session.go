package model

// HeartbeatRequest renews the exclusive session lock for a student's exam
// session. SessionID is an opaque per-launch identifier minted by the desktop
// client; the server only compares it for equality.
type HeartbeatRequest struct {
	StudentID *int   `json:"studentId" binding:"required"`
	SessionID string `json:"sessionId" binding:"required,min=1,max=128"`
}

// HeartbeatResponse acknowledges a successful lock acquire or refresh.
type HeartbeatResponse struct {
	Success          bool  `json:"success"`
	ExpiresInSeconds int64 `json:"expiresInSeconds"`
}

// ReleaseRequest gives up the session lock on clean shutdown.
type ReleaseRequest struct {
	StudentID *int   `json:"studentId" binding:"required"`
	SessionID string `json:"sessionId" binding:"required,min=1,max=128"`
}

// ReleaseResponse acknowledges a release. Release is idempotent: stale or
// repeated releases succeed without effect.
type ReleaseResponse struct {
	Success bool `json:"success"`
}
