package sweep

import (
	"testing"
	"time"
)

func TestFresh(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt time.Time
		want        bool
	}{
		{
			name:        "just published",
			publishedAt: now,
			want:        true,
		},
		{
			name:        "half an hour old",
			publishedAt: now.Add(-30 * time.Minute),
			want:        true,
		},
		{
			name:        "just inside the window",
			publishedAt: now.Add(-FreshnessWindow + time.Second),
			want:        true,
		},
		{
			name:        "exactly two hours old",
			publishedAt: now.Add(-FreshnessWindow),
			want:        false,
		},
		{
			name:        "three hours old",
			publishedAt: now.Add(-3 * time.Hour),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fresh(tt.publishedAt, now); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}
