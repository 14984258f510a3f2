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

package metaproto

import "sync"

// Registry owns every in-flight negotiation Machine, keyed by context id. A
// process negotiates with many peers concurrently; each negotiation is its
// own single-actor Machine, so the registry only needs to guard the map
// itself, not machine internals.
type Registry struct {
	mu        sync.Mutex
	machines  map[string]*Machine
	maxRounds int
}

// NewRegistry creates an empty Registry. maxRounds is the default applied
// to machines it creates; see NewMachine.
func NewRegistry(maxRounds int) *Registry {
	return &Registry{
		machines:  make(map[string]*Machine),
		maxRounds: maxRounds,
	}
}

// GetOrCreate returns the Machine for contextID, creating it in StateIdle
// if this is the first time contextID has been seen.
func (r *Registry) GetOrCreate(contextID string) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[contextID]; ok {
		return m
	}
	m := NewMachine(contextID, r.maxRounds)
	r.machines[contextID] = m
	return m
}

// Get returns the Machine for contextID, if one exists.
func (r *Registry) Get(contextID string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[contextID]
	return m, ok
}

// Remove drops contextID's Machine, e.g. once it reaches a terminal state.
func (r *Registry) Remove(contextID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.machines, contextID)
}

// Count returns the number of tracked negotiations.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.machines)
}

// Sweep removes every Machine that has reached a terminal state, returning
// how many were evicted. Callers typically run this on a ticker, the same
// shape the channel manager and session store use for their own cleanup
// loops.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, m := range r.machines {
		if m.State().Terminal() {
			delete(r.machines, id)
			evicted++
		}
	}
	return evicted
}
