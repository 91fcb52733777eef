// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import "github.com/metanode/stake/metrics"

var (
	metricCalls        = metrics.LazyLoadCounterVec("stake_calls_count", []string{"op", "status"})
	metricCallDuration = metrics.LazyLoadHistogramVec("stake_call_duration_us", []string{"op"}, metrics.BucketOpMicros)
	metricPools        = metrics.LazyLoadGauge("stake_pools_count")
)
