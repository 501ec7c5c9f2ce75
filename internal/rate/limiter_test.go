package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	r1, err := l.Allow(ctx, "1.2.3.4|/profile")
	require.NoError(t, err)
	assert.True(t, r1.Allowed)
	assert.Equal(t, int64(1), r1.Remaining)
	assert.Equal(t, 55*time.Second, r1.WindowTTL)

	r2, _ := l.Allow(ctx, "1.2.3.4|/profile")
	assert.True(t, r2.Allowed)
	assert.Equal(t, int64(0), r2.Remaining)

	r3, _ := l.Allow(ctx, "1.2.3.4|/profile")
	assert.False(t, r3.Allowed)
	assert.Equal(t, int64(3), r3.CurrentHits)
	assert.Equal(t, 55*time.Second, r3.RetryAfter)

	// otra clave no comparte contador
	other, _ := l.Allow(ctx, "5.6.7.8|/profile")
	assert.True(t, other.Allowed)

	// ventana siguiente
	l.now = func() time.Time { return base.Add(time.Minute) }
	r4, _ := l.Allow(ctx, "1.2.3.4|/profile")
	assert.True(t, r4.Allowed)
	assert.Equal(t, int64(1), r4.CurrentHits)
}

func TestEvaluate_RetryAfterFallback(t *testing.T) {
	res := evaluate(5, 2, -1, 1500*time.Millisecond)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2*time.Second, res.RetryAfter)
	assert.Equal(t, int64(0), res.Remaining)
}
