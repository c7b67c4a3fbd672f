// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package subscriber

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
)

func noopLogger() commons.Logger { return &commons.NoOpLogger{} }

func TestUserWriter_IgnoresUserAndInitializeMessages(t *testing.T) {
	server, client := newServerSocketPair(t)
	writer := NewUserWriter(server, noopLogger())
	assert.Empty(t, writer.Start(context.Background()))

	require.NoError(t, writer.Handle(context.Background(), message.NewText(message.RoleUser, "hi", true, 1.0)))
	require.NoError(t, writer.Handle(context.Background(), message.NewInitialize(message.RoleSystem, "scenario", 1.0)))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err, "expected no frame to have been forwarded to the client")
}

func TestUserWriter_ForwardsAssistantMessages(t *testing.T) {
	server, client := newServerSocketPair(t)
	writer := NewUserWriter(server, noopLogger())

	require.NoError(t, writer.Handle(context.Background(), message.NewHint(message.RoleAssistant, nil, 1.0)))

	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	decoded, err := message.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, message.KindHint, decoded.Kind())
}
