// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(&buf, &lvl, false))

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Info("deposit", "amount", big.NewInt(1234567), "pool", 1)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO ["), out)
	assert.Contains(t, out, "deposit")
	assert.Contains(t, out, "amount=1,234,567")
	assert.Contains(t, out, "pool=1")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTerminalHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)
	l := slog.New(NewTerminalHandlerWithLevel(&buf, &lvl, false)).
		With("pkg", "stake").
		WithGroup("pool").
		With("id", 1)

	l.Info("settled", "block", 120)
	out := buf.String()
	assert.Contains(t, out, "pkg=stake")
	assert.Contains(t, out, "pool.id=1")
	assert.Contains(t, out, "pool.block=120")
	assert.NotContains(t, out, "pool.pkg")

	buf.Reset()
	l.WithGroup("").Info("same")
	assert.Contains(t, buf.String(), "pool.id=1")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelTrace)
	l := NewLogger(JSONHandlerWithLevel(&buf, &lvl)).With("pkg", "stake")

	l.Trace("settled", "acc", uint256.NewInt(42), "nil", (*big.Int)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "trace", rec["lvl"])
	assert.Equal(t, "settled", rec["msg"])
	assert.Equal(t, "stake", rec["pkg"])
	assert.Equal(t, "42", rec["acc"])
	assert.Equal(t, "<nil>", rec["nil"])
}

func TestLogfmtHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelWarn)
	l := NewLogger(LogfmtHandlerWithLevel(&buf, &lvl))

	l.Info("skipped")
	l.Warn("paused", "op", "withdraw")
	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "lvl=warn")
	assert.Contains(t, buf.String(), "op=withdraw")
}

func TestWithContextFollowsRoot(t *testing.T) {
	defer SetDefault(NewLogger(DiscardHandler()))

	pkgLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelDebug)
	SetDefault(NewLogger(LogfmtHandlerWithLevel(&buf, &lvl)))

	pkgLogger.With("op", "claim").Debug("done")
	assert.Contains(t, buf.String(), "pkg=test")
	assert.Contains(t, buf.String(), "op=claim")
	assert.True(t, pkgLogger.Enabled(t.Context(), LevelDebug))
	assert.False(t, pkgLogger.Enabled(t.Context(), LevelTrace))
}

func TestLevels(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "crit", LevelString(LevelCrit))
	assert.Equal(t, "unknown", LevelString(slog.Level(3)))
}
