package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionLockKey returns the Redis key holding the active session id for a
// (exam, student) pair. At most one exam-client session may hold it.
func (r *CacheKeyStruct) SessionLockKey(examID string, studentID int) string {
	return fmt.Sprintf("exam:%s:student:%d:session_lock", examID, studentID)
}

// SubmissionEventChannel returns the Redis PubSub channel carrying live
// monitoring events for a submission, consumed by the proctor stream.
func (r *CacheKeyStruct) SubmissionEventChannel(submissionID string) string {
	return fmt.Sprintf("submission:%s:events", submissionID)
}

var CacheKey = NewCacheKeyStruct()
