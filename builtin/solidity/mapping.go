// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/metanode/stake/meta"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded. A missing entry decodes to the zero value of V, or a
// freshly allocated zero value when V is a pointer.
type Mapping[K Key, V any] struct {
	context *Context
	basePos meta.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos meta.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) meta.Bytes32 {
	return meta.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of key.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		m.context.touch("read", len(raw))
		return rlp.DecodeBytes(raw, value2ptr(&value))
	})
	return
}

// Exists reports whether key has a stored value.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Set stores value under key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		m.context.touch("write", len(val))
		return val, nil
	})
}

// Delete clears the entry of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

// value2ptr returns a decode target for v. Pointer values are decoded in place.
func value2ptr[V any](v *V) any {
	if reflect.ValueOf(*v).Kind() == reflect.Ptr {
		return *v
	}
	return v
}
