// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ollama"
)

// SystemPrompt is injected at the head of every outbound request. It is
// never stored in conversation history.
const SystemPrompt = "You are a helpful AI assistant. Maintain conversational context and provide consistent responses."

// BuildPayload assembles the outbound chat request from a conversation
// snapshot and a new user utterance:
//
//	[system] ++ history ++ [user utterance]
//
// The result is a pure function of its inputs, so identical state
// produces an identical request.
func BuildPayload(snap conversation.Snapshot, utterance, defaultModel string) ollama.ChatRequest {
	model := snap.ActiveModel
	if model == "" {
		model = defaultModel
	}

	messages := make([]ollama.Message, 0, len(snap.Messages)+2)
	messages = append(messages, ollama.NewSystemMessage(SystemPrompt))
	messages = append(messages, snap.Messages...)
	messages = append(messages, ollama.NewUserMessage(utterance))

	return ollama.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
		Options: &ollama.Options{
			Temperature: snap.Temperature,
			NumCtx:      snap.ContextLength,
		},
	}
}
