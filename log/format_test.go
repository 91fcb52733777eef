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
	"errors"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestFormatSlogValue(t *testing.T) {
	oneToken, _ := new(big.Int).SetString("1000000000000000000", 10)
	supply, _ := new(big.Int).SetString("123456789012345678901234", 10)

	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"small int", slog.IntValue(-8), "-8"},
		{"grouped int", slog.Int64Value(-1000000), "-1,000,000"},
		{"below grouping", slog.Uint64Value(99999), "99999"},
		{"block", slog.Uint64Value(4294967295), "4,294,967,295"},
		{"bool", slog.BoolValue(true), "true"},
		{"duration", slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{"plain string", slog.StringValue("withdraw"), "withdraw"},
		{"spaced string", slog.StringValue("pool 0"), `"pool 0"`},
		{"equal sign", slog.StringValue("a=b"), `"a=b"`},
		{"control char", slog.StringValue("a\nb"), `"a\nb"`},
		{"token amount", slog.AnyValue(oneToken), "1,000,000,000,000,000,000"},
		{"large amount", slog.AnyValue(supply), "123,456,789,012,345,678,901,234"},
		{"negative amount", slog.AnyValue(new(big.Int).Neg(supply)), "-123,456,789,012,345,678,901,234"},
		{"nil amount", slog.AnyValue((*big.Int)(nil)), "<nil>"},
		{"u256", slog.AnyValue(uint256.NewInt(1234567)), "1,234,567"},
		{"error", slog.AnyValue(errors.New("below minimum")), `"below minimum"`},
		{"nil", slog.AnyValue(nil), "<nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(FormatSlogValue(tt.value, nil)))
		})
	}
}

func TestEscapeMessage(t *testing.T) {
	assert.Equal(t, "pool added", escapeMessage("pool added"))
	assert.Equal(t, "line1\nline2", escapeMessage("line1\nline2"))
	assert.Equal(t, `"weight=0"`, escapeMessage("weight=0"))
}

func BenchmarkFormatAmount(b *testing.B) {
	amount, _ := new(big.Int).SetString("987654321000000000000", 10)
	buf := make([]byte, 0, 64)
	b.ReportAllocs()
	for b.Loop() {
		buf = appendBigInt(buf[:0], amount)
	}
}
