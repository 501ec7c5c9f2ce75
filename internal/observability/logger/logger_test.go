package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestFromOr_PrefersContextLogger(t *testing.T) {
	base := zap.NewNop().Named("base")
	scoped := zap.NewNop().Named("scoped")

	assert.Same(t, base, FromOr(context.Background(), base))

	ctx := ToContext(context.Background(), scoped)
	assert.Same(t, scoped, FromOr(ctx, base))
	assert.Same(t, scoped, From(ctx))
}

func TestNew_ProdLevel(t *testing.T) {
	l := New(Config{Env: "prod", Level: "warn"})
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
