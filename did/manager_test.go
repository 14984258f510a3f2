// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package did

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	doc *Document
	err error
}

func (f *fakeResolver) Resolve(ctx context.Context, did AgentDID) (*Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func TestManager(t *testing.T) {
	doc, _, err := CreateWBA("example.com")
	require.NoError(t, err)

	t.Run("ResolveAgent", func(t *testing.T) {
		m := NewManager()
		m.SetResolver(&fakeResolver{doc: doc})

		got, err := m.ResolveAgent(context.Background(), AgentDID(doc.ID))
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
	})

	t.Run("ValidateAgent", func(t *testing.T) {
		m := NewManager()
		m.SetResolver(&fakeResolver{doc: doc})

		gotDoc, vm, frag, err := m.ValidateAgent(context.Background(), AgentDID(doc.ID))
		require.NoError(t, err)
		assert.Equal(t, doc.ID, gotDoc.ID)
		assert.Equal(t, "key-1", frag)
		assert.Equal(t, doc.VerificationMethod[0].ID, vm.ID)
	})

	t.Run("ValidateAgentPropagatesResolveError", func(t *testing.T) {
		m := NewManager()
		m.SetResolver(&fakeResolver{err: NewDIDResolutionError("did:wba:example.com", assertErr("boom"))})

		_, _, _, err := m.ValidateAgent(context.Background(), "did:wba:example.com")
		assert.Error(t, err)
	})
}

func TestValidateDID(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateDID("did:wba:example.com"))
	})

	t.Run("TooShort", func(t *testing.T) {
		assert.Error(t, ValidateDID("did:wba"))
	})

	t.Run("WrongMethod", func(t *testing.T) {
		assert.Error(t, ValidateDID("did:web:example.com"))
	})
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
