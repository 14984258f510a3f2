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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sage-x-project/anp/auth"
	"github.com/sage-x-project/anp/openrpc"
	"github.com/sage-x-project/anp/rpc"
	"github.com/sage-x-project/anp/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoMethod(name string, mode Mode) MethodDef {
	return MethodDef{
		Name:        name,
		Description: "echoes its single argument back",
		Params:      []openrpc.ParamSpec{{Name: "value", Sample: "x", Required: true}},
		Result:      openrpc.ParamSpec{Name: "value", Sample: "x"},
		Mode:        mode,
		Invoke: func(ctx *rpc.Context, args map[string]interface{}) (interface{}, error) {
			return args["value"], nil
		},
	}
}

func newTestServer(t *testing.T) (*Server, *runtime.Runtime) {
	t.Helper()
	rt := runtime.New()
	t.Cleanup(rt.Close)

	s := New(rt, "https://agent.example", "/p", "did:wba:agent.example:agent", "echo-agent", "a test agent")
	require.NoError(t, s.RegisterMethod(echoMethod("echo", ModeContent)))
	require.NoError(t, s.RegisterMethod(echoMethod("whisper", ModeLink)))
	return s, rt
}

func TestRegisterMethod_FailsAfterBuild(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Build())

	err := s.RegisterMethod(echoMethod("late", ModeContent))
	assert.Error(t, err)
}

func TestRegisterMethod_RejectsMissingInvoker(t *testing.T) {
	s, _ := newTestServer(t)
	err := s.RegisterMethod(MethodDef{Name: "broken"})
	assert.Error(t, err)
}

func TestHandler_PanicsBeforeBuild(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Panics(t, func() { s.Handler() })
}

func TestBuild_AssemblesContentAndLinkDocuments(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Build())

	assert.NotEmpty(t, s.adJSON)
	assert.NotEmpty(t, s.docJSON)
	assert.Contains(t, s.linkDocs, "whisper")
	assert.NotContains(t, string(s.docJSON), "whisper")
}

func TestEndpoints_ServedWithoutAuthentication(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Build())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	for _, path := range []string{"/p/ad.json", "/p/interface.json", "/p/interface/whisper.json", "/p/health", "/p/error"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
	}
}

func TestRPCAndTools_RejectMissingAuthorization(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Build())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/p/rpc", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/p/tools")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestRPC_BearerTokenDispatchesToRegisteredMethod(t *testing.T) {
	s, _ := newTestServer(t)
	issuer := auth.NewTokenIssuer([]byte("test-signing-key-0123456789abcd"))
	s.WithTokenIssuer(issuer)
	require.NoError(t, s.Build())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	token, err := issuer.Issue("did:wba:caller.example:alice", time.Hour)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/p/rpc", strings.NewReader(
		`{"jsonrpc":"2.0","id":"1","method":"echo","params":{"value":"hello"}}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "hello", body["result"])
}

func TestRPC_InvalidBearerTokenRejected(t *testing.T) {
	s, _ := newTestServer(t)
	s.WithTokenIssuer(auth.NewTokenIssuer([]byte("test-signing-key-0123456789abcd")))
	require.NoError(t, s.Build())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/p/rpc", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTools_ListsRegisteredMethods(t *testing.T) {
	s, _ := newTestServer(t)
	tools := s.ExportTools()
	assert.Len(t, tools, 2)
	names := []string{tools[0].Function.Name, tools[1].Function.Name}
	assert.Contains(t, names, "echo")
	assert.Contains(t, names, "whisper")
}

func TestHandleHealth_ReportsSessionAndNegotiationCounts(t *testing.T) {
	s, rt := newTestServer(t)
	require.NoError(t, s.Build())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	rt.Sessions.GetOrCreateSession("did:wba:someone.example:bob")
	rt.Negotiations.GetOrCreate("ctx-1")

	resp, err := http.Get(srv.URL + "/p/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
	assert.EqualValues(t, 1, body["negotiations"])
}
