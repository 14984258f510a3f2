// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package auth

import (
	"sync"
	"time"
)

// NonceStore tracks seen (did, nonce) pairs with a TTL to reject replays.
// One inner map per DID keeps isolation invariants obvious and lets
// DeleteDID purge everything for a single identity cheaply.
type NonceStore struct {
	ttl  time.Duration
	data sync.Map // did -> *sync.Map (nonce -> expiryUnix)
	tick *time.Ticker
	stop chan struct{}
}

// NewNonceStore creates a TTL-based replay cache. ttl should match the
// header verification window (default 300s).
func NewNonceStore(ttl time.Duration) *NonceStore {
	n := &NonceStore{
		ttl:  ttl,
		stop: make(chan struct{}),
		tick: time.NewTicker(time.Minute),
	}
	go n.gcLoop()
	return n
}

// Seen returns true if (did, nonce) was already recorded within the replay
// window; otherwise it records it and returns false.
func (n *NonceStore) Seen(did, nonce string) bool {
	if did == "" || nonce == "" {
		return false
	}
	exp := time.Now().Add(n.ttl).Unix()

	v, _ := n.data.LoadOrStore(did, &sync.Map{})
	m := v.(*sync.Map)

	if old, ok := m.Load(nonce); ok {
		if prevExp, _ := old.(int64); prevExp >= time.Now().Unix() {
			return true
		}
	}
	m.Store(nonce, exp)
	return false
}

// DeleteDID removes all recorded nonces for a DID.
func (n *NonceStore) DeleteDID(did string) {
	n.data.Delete(did)
}

// Close stops the background GC goroutine.
func (n *NonceStore) Close() {
	close(n.stop)
	if n.tick != nil {
		n.tick.Stop()
	}
}

func (n *NonceStore) gcLoop() {
	for {
		select {
		case <-n.tick.C:
			now := time.Now().Unix()
			n.data.Range(func(k, v any) bool {
				m := v.(*sync.Map)
				empty := true
				m.Range(func(nk, nv any) bool {
					if exp, _ := nv.(int64); exp < now {
						m.Delete(nk)
					} else {
						empty = false
					}
					return true
				})
				if empty {
					n.data.Delete(k)
				}
				return true
			})
		case <-n.stop:
			return
		}
	}
}
