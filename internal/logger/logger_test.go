package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/feral-file/contract-ledger/internal/logger"
)

func TestReplace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))

	ctx := context.Background()
	logger.InfoCtx(ctx, "recalculated", zap.Uint64("contract_id", 7))
	logger.WarnCtx(ctx, "drift")
	logger.ErrorCtx(ctx, errors.New("lock timeout"))
	logger.ErrorCtx(ctx, nil)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "recalculated", entries[0].Message)
	assert.EqualValues(t, 7, entries[0].ContextMap()["contract_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "lock timeout", entries[2].Message)
	assert.Equal(t, "error occurred", entries[3].Message)

	restore()
	logger.Info("after restore")
	assert.Len(t, logs.All(), 4)
}

func TestInitialize(t *testing.T) {
	restore := logger.Replace(zap.NewNop())
	defer restore()

	require.NoError(t, logger.Initialize(logger.Config{
		Debug: true,
		Tags:  map[string]string{"service": "ledger-test"},
	}))
	assert.NotNil(t, logger.Default())
	logger.Flush(0)
}
