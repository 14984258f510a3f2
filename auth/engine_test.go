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

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/anp/auth"
	"github.com/sage-x-project/anp/crypto"
	"github.com/sage-x-project/anp/did"

	_ "github.com/sage-x-project/anp/internal/cryptoinit"
)

type staticResolver struct{ doc *did.Document }

func (s *staticResolver) Resolve(ctx context.Context, id did.AgentDID) (*did.Document, error) {
	return s.doc, nil
}

func newEngine(t *testing.T, doc *did.Document) *auth.Engine {
	t.Helper()
	m := did.NewManager()
	m.SetResolver(&staticResolver{doc: doc})
	e := auth.NewEngine(m)
	t.Cleanup(e.Close)
	return e
}

func TestEngine_BuildAndVerifyRoundTrip(t *testing.T) {
	doc, keys, err := did.CreateWBA("example.com", did.WithAgentDescriptionURL("https://example.com/ad.json"))
	require.NoError(t, err)

	e := newEngine(t, doc)

	header, err := e.BuildHeader(doc.ID, "key-1", keys["key-1"], "example.com", auth.Version1_1)
	require.NoError(t, err)

	result, err := e.Verify(context.Background(), header, "example.com")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, doc.ID, result.DID)
	assert.Equal(t, "key-1", result.VerificationMethod)
}

func TestEngine_ReplayedNonceFails(t *testing.T) {
	doc, keys, err := did.CreateWBA("example.com")
	require.NoError(t, err)

	e := newEngine(t, doc)
	header, err := e.BuildHeader(doc.ID, "key-1", keys["key-1"], "example.com", auth.Version1_1)
	require.NoError(t, err)

	_, err = e.Verify(context.Background(), header, "example.com")
	require.NoError(t, err)

	_, err = e.Verify(context.Background(), header, "example.com")
	require.Error(t, err)
	assert.True(t, auth.IsReason(err, auth.ReasonNonce))
}

func TestEngine_WrongServiceDomainFailsSignature(t *testing.T) {
	doc, keys, err := did.CreateWBA("example.com")
	require.NoError(t, err)

	e := newEngine(t, doc)
	header, err := e.BuildHeader(doc.ID, "key-1", keys["key-1"], "example.com", auth.Version1_1)
	require.NoError(t, err)

	_, err = e.Verify(context.Background(), header, "other.example")
	require.Error(t, err)
	assert.True(t, auth.IsReason(err, auth.ReasonSignature))
}

func TestEngine_StaleTimestampFails(t *testing.T) {
	doc, keys, err := did.CreateWBA("example.com")
	require.NoError(t, err)

	m := did.NewManager()
	m.SetResolver(&staticResolver{doc: doc})
	e := auth.NewEngine(m, auth.WithMaxAge(time.Nanosecond))
	defer e.Close()

	header, err := e.BuildHeader(doc.ID, "key-1", keys["key-1"], "example.com", auth.Version1_1)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = e.Verify(context.Background(), header, "example.com")
	require.Error(t, err)
	assert.True(t, auth.IsReason(err, auth.ReasonTimestamp))
}

func TestEngine_Ed25519KeyType(t *testing.T) {
	doc, keys, err := did.CreateWBA("example.com", did.WithKeyType(crypto.KeyTypeEd25519))
	require.NoError(t, err)

	e := newEngine(t, doc)
	header, err := e.BuildHeader(doc.ID, "key-1", keys["key-1"], "example.com", auth.Version1_0)
	require.NoError(t, err)

	result, err := e.Verify(context.Background(), header, "example.com")
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestEngine_Secp256r1KeyType(t *testing.T) {
	doc, keys, err := did.CreateWBA("example.com", did.WithKeyType(crypto.KeyTypeSecp256r1))
	require.NoError(t, err)

	e := newEngine(t, doc)
	header, err := e.BuildHeader(doc.ID, "key-1", keys["key-1"], "example.com", auth.Version1_0)
	require.NoError(t, err)

	result, err := e.Verify(context.Background(), header, "example.com")
	require.NoError(t, err)
	assert.True(t, result.Verified)
}
