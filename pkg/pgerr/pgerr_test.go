package pgerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "query canceled", err: &pq.Error{Code: "57014"}, want: true},
		{name: "connection failure", err: &pq.Error{Code: "08006"}, want: true},
		{name: "wrapped serialization failure", err: fmt.Errorf("commit: %w", &pq.Error{Code: "40001"}), want: true},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: true},
		{name: "bad conn", err: driver.ErrBadConn, want: true},
		{name: "syntax error", err: &pq.Error{Code: "42601"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestViolations(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23P01"}))
	assert.True(t, IsExclusionViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23P01"})))
	assert.Equal(t, "", Code(errors.New("x")))
}
