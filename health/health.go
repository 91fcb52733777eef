// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>


// Package health tracks whether the node keeps producing blocks.
package health

import (
	"sync"
	"time"
)

type BlockIngestion struct {
	Number    uint32     `json:"number"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
	Bootstrapped   bool            `json:"bootstrapped"`
}

// Health is healthy once bootstrapped, while blocks keep coming within the
// tolerance. A zero tolerance disables the block check.
type Health struct {
	lock         sync.RWMutex
	tolerance    time.Duration
	newBestBlock time.Time
	bestBlock    uint32
	bootstrapped bool
}

func New(tolerance time.Duration) *Health {
	return &Health{tolerance: tolerance}
}

func (h *Health) NewBestBlock(number uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newBestBlock = time.Now()
	h.bestBlock = number
}

func (h *Health) Bootstrapped(done bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.bootstrapped = done
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	ingestion := &BlockIngestion{Number: h.bestBlock}
	if !h.newBestBlock.IsZero() {
		ts := h.newBestBlock
		ingestion.Timestamp = &ts
	}

	healthy := h.bootstrapped
	if h.tolerance > 0 {
		healthy = healthy && !h.newBestBlock.IsZero() && time.Since(h.newBestBlock) <= h.tolerance
	}
	return &Status{
		Healthy:        healthy,
		BlockIngestion: ingestion,
		Bootstrapped:   h.bootstrapped,
	}
}
