package service

import (
	"errors"
	"testing"
	"time"

	"github.com/examsentry/integrity-backend/internal/model"
)

func TestWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  bool
	}{
		{"no bounds", nil, nil, true},
		{"inside window", &before, &after, true},
		{"before start", &after, nil, false},
		{"after end", nil, &before, false},
		{"open start, before end", nil, &after, true},
		{"after start, open end", &before, nil, true},
		{"exactly at start", &now, &after, true},
		{"exactly at end", &before, &now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinWindow(now, tt.start, tt.end); got != tt.want {
				t.Errorf("WithinWindow(now, %v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestResumable(t *testing.T) {
	tests := []struct {
		status model.SubmissionStatus
		want   error
	}{
		{model.SubmissionStatusInProgress, nil},
		{model.SubmissionStatusSubmitted, ErrSubmissionClosed},
		{model.SubmissionStatusGraded, ErrSubmissionClosed},
		{model.SubmissionStatusTerminated, ErrSubmissionClosed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := resumable(&model.Submission{Status: tt.status})
			if !errors.Is(err, tt.want) {
				t.Errorf("resumable(%s) = %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}
