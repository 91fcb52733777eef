// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/metanode/stake/metrics"
)

var (
	metricBestBlock = metrics.LazyLoadGauge("stake_best_block")
	metricSteps     = metrics.LazyLoadCounterVec("stake_scenario_steps_count", []string{"op", "status"})
)
