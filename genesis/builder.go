// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/metanode/stake/builtin"
	"github.com/metanode/stake/builtin/stake"
	"github.com/metanode/stake/co"
	"github.com/metanode/stake/meta"
	"github.com/metanode/stake/state"
)

// Builder helper to build the genesis state.
type Builder struct {
	stateProcs []func(state *state.State) error
	calls      []func(engine *stake.Engine) error
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add an engine call, run at block 0 after every state process.
func (b *Builder) Call(call func(engine *stake.Engine) error) *Builder {
	b.calls = append(b.calls, call)
	return b
}

// Build applies the presets to a fresh state of stater and commits it.
// It returns the hash of the committed changes and the events of the calls.
func (b *Builder) Build(stater *state.Stater) (root meta.Bytes32, events []*stake.Event, err error) {
	st := stater.NewState()

	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return meta.Bytes32{}, nil, errors.Wrap(err, "state process")
		}
	}

	engine := builtin.Stake.WithState(st, stake.ClockFunc(func() uint32 { return 0 }))
	defer engine.Close()

	ch := make(chan *stake.Event)
	sub := engine.SubscribeEvents(ch)
	var goes co.Goes
	goes.Go(func() {
		for ev := range ch {
			events = append(events, ev)
		}
	})

	var callErr error
	for i, call := range b.calls {
		if err := call(engine); err != nil {
			callErr = errors.Wrapf(err, "call %d", i)
			break
		}
	}
	sub.Unsubscribe()
	close(ch)
	goes.Wait()
	if callErr != nil {
		return meta.Bytes32{}, nil, callErr
	}

	root, err = st.Stage().Commit()
	if err != nil {
		return meta.Bytes32{}, nil, errors.Wrap(err, "commit state")
	}
	return root, events, nil
}
