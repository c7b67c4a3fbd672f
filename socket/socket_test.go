// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
)

// newTestPair spins up a real websocket server+client pair so tests
// exercise the socket against a live connection rather than a mock.
func newTestPair(t *testing.T) (server *TypedSocket, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		server = New(conn, &commons.NoOpLogger{})
	}))
	t.Cleanup(srv.Close)

	url := "ws" + srv.URL[len("http"):]
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Give the server goroutine a moment to finish the upgrade.
	deadline := time.Now().Add(time.Second)
	for server == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.NotNil(t, server)
	return server, client
}

func TestTypedSocket_SendReceiveRoundTrip(t *testing.T) {
	server, client := newTestPair(t)

	text := message.NewText(message.RoleUser, "hello", true, 1.0)
	encoded, err := message.Encode(text)
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, encoded))

	received, err := server.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, message.KindText, received.Kind())

	require.NoError(t, server.Send(message.NewHint(message.RoleAssistant, nil, 2.0)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	decoded, err := message.Parse(data)
	require.NoError(t, err)
	require.Equal(t, message.KindHint, decoded.Kind())
}

func TestTypedSocket_UnknownTypeIsProtocolError(t *testing.T) {
	server, client := newTestPair(t)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus","role":"user"}`)))

	_, err := server.Receive(context.Background())
	require.Error(t, err)
}

func TestTypedSocket_CloseIsIdempotent(t *testing.T) {
	server, _ := newTestPair(t)
	require.NoError(t, server.Close(websocket.CloseNormalClosure, "done"))
	require.NoError(t, server.Close(websocket.CloseNormalClosure, "done"))
	require.False(t, server.Connected())
}
