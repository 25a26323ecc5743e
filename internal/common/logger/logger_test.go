package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "classify-utterance"})

	log.Info("classified", map[string]interface{}{"intent": "greeting", "confidence": 0.99})
	log.WithError(errors.New("boom")).Error("failed", nil)
	log.Debug("rules", map[string]interface{}{"evaluated": 3})
	log.Warn("slow", nil)

	entries := logs.All()
	if assert.Len(t, entries, 4) {
		assert.Equal(t, "classified", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "classify-utterance", ctx["taskType"])
		assert.Equal(t, "greeting", ctx["intent"])
		assert.Equal(t, 0.99, ctx["confidence"])

		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
		assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	}
}

func TestMapToZapFields_SortedAndErrors(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{
		"b":   1,
		"a":   "x",
		"err": errors.New("bad"),
	})

	if assert.Len(t, fields, 3) {
		assert.Equal(t, "a", fields[0].Key)
		assert.Equal(t, "b", fields[1].Key)
		assert.Equal(t, "err", fields[2].Key)
		assert.Equal(t, zapcore.ErrorType, fields[2].Type)
	}
	assert.Nil(t, mapToZapFields(nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.With(map[string]interface{}{"k": "v"}).Info("ignored", nil)
	})
}
