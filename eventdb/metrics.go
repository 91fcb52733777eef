// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/metanode/stake/metrics"
)

var (
	metricCriteriaLengthBucket = metrics.LazyLoadHistogramVec("eventdb_criteria_length_bucket", []string{"type"}, []int64{0, 2, 5, 10, 25, 100, 1000})
	metricQueryParameters      = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricInsertedEvents       = metrics.LazyLoadCounter("eventdb_inserted_events")
)

func metricsHandleFilter(filter *Filter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaLengthBucket().ObserveWithLabels(int64(len(filter.CriteriaSet)), map[string]string{"type": "event"})
	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0)
		if c.Kind != "" {
			paramsUsed = append(paramsUsed, "kind")
		}
		if c.PoolID != nil {
			paramsUsed = append(paramsUsed, "pool")
		}
		if c.Account != nil {
			paramsUsed = append(paramsUsed, "account")
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}
}
