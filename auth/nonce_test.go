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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNonceStore_SeenRecordsAndDetectsReplay(t *testing.T) {
	n := NewNonceStore(time.Minute)
	defer n.Close()

	assert.False(t, n.Seen("did:wba:a.example", "n1"))
	assert.True(t, n.Seen("did:wba:a.example", "n1"))
}

func TestNonceStore_IsolatedPerDID(t *testing.T) {
	n := NewNonceStore(time.Minute)
	defer n.Close()

	assert.False(t, n.Seen("did:wba:a.example", "n1"))
	assert.False(t, n.Seen("did:wba:b.example", "n1"))
}

func TestNonceStore_DeleteDIDClearsReplayRecord(t *testing.T) {
	n := NewNonceStore(time.Minute)
	defer n.Close()

	assert.False(t, n.Seen("did:wba:a.example", "n1"))
	n.DeleteDID("did:wba:a.example")
	assert.False(t, n.Seen("did:wba:a.example", "n1"))
}

func TestNonceStore_ExpiredEntryIsNotAReplay(t *testing.T) {
	n := NewNonceStore(time.Millisecond)
	defer n.Close()

	assert.False(t, n.Seen("did:wba:a.example", "n1"))
	time.Sleep(5 * time.Millisecond)
	assert.False(t, n.Seen("did:wba:a.example", "n1"))
}
