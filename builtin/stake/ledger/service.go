// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin/solidity"
	"github.com/metanode/stake/meta"
)

var slotRecords = meta.BytesToBytes32([]byte("stake-records"))

// Service stores stake records keyed by pool and account.
type Service struct {
	records *solidity.Mapping[meta.Bytes32, *body]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		records: solidity.NewMapping[meta.Bytes32, *body](sctx, slotRecords),
	}
}

func recordKey(poolID uint64, account meta.Address) meta.Bytes32 {
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], poolID)
	return meta.Blake2b(id[:], account[:])
}

// Get returns the record of account in pool, zero valued when absent.
func (s *Service) Get(poolID uint64, account meta.Address) (*Record, error) {
	b, err := s.records.Get(recordKey(poolID, account))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake record")
	}
	return newRecord(b), nil
}

// Save stores rec.
func (s *Service) Save(poolID uint64, account meta.Address, rec *Record) error {
	if err := s.records.Set(recordKey(poolID, account), rec.body); err != nil {
		return errors.Wrap(err, "failed to set stake record")
	}
	return nil
}
