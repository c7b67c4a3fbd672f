// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package message defines the wire envelope and the closed set of message
// kinds that flow across the bus. Every kind is a tagged union member keyed
// by its "type" field, matching the wire protocol.
package message

import (
	"encoding/json"
	"fmt"
)

// Role is one of the three closed roles a message can carry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind is the closed set of message kinds carried on the bus.
type Kind string

const (
	KindInitialize    Kind = "initialize"
	KindText          Kind = "text"
	KindAudio         Kind = "audio"
	KindTranscription Kind = "transcription"
	KindTranslation   Kind = "translation"
	KindHint          Kind = "hint"
	KindError         Kind = "error"
	KindProcessing    Kind = "processing"
)

// DictionaryEntry is a single vocabulary/phrase translation, field names
// ported from multivox/types.py's DictionaryEntry.
type DictionaryEntry struct {
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
	Reading        string `json:"reading,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// HintOption is one suggested learner reply.
type HintOption struct {
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
}

// Base carries the fields every envelope on the bus shares: role, kind,
// monotonic timestamp, and the end-of-turn flag.
type Base struct {
	Type      Kind    `json:"type"`
	Role      Role    `json:"role"`
	Timestamp float64 `json:"timestamp"`
	EndOfTurn bool    `json:"end_of_turn"`

	// TurnID is an internal, non-wire bookkeeping field: a monotonic
	// per-role counter assigned by the bus on publish so enrichment tasks
	// can enforce at-most-once-per-(role,turn,kind) dispatch. It is never
	// marshalled onto the wire.
	TurnID int `json:"-"`
}

// Message is satisfied by every concrete envelope kind.
type Message interface {
	Kind() Kind
	GetRole() Role
	IsEndOfTurn() bool
	GetTimestamp() float64
	GetTurnID() int
	SetTurnID(id int)
}

func (b *Base) Kind() Kind            { return b.Type }
func (b *Base) GetRole() Role         { return b.Role }
func (b *Base) IsEndOfTurn() bool     { return b.EndOfTurn }
func (b *Base) GetTimestamp() float64 { return b.Timestamp }
func (b *Base) GetTurnID() int        { return b.TurnID }
func (b *Base) SetTurnID(id int)      { b.TurnID = id }

// Initialize is the first message of a session, carrying the scenario /
// system prompt text.
type Initialize struct {
	Base
	Text string `json:"text"`
}

// Text is a plain utterance fragment.
type Text struct {
	Base
	Text string `json:"text"`
}

// Audio carries raw PCM or encoded audio; sample rate travels in MimeType
// (e.g. "audio/pcm;rate=16000").
type Audio struct {
	Base
	AudioData []byte `json:"audio"`
	MimeType  string `json:"mime_type"`
}

// Transcription carries a structured transcription/translation result:
// source text, its translation, a phrase-chunking, and a term dictionary.
type Transcription struct {
	Base
	SourceText     string                     `json:"source_text"`
	TranslatedText string                     `json:"translated_text"`
	Chunked        []string                   `json:"chunked"`
	Dictionary     map[string]DictionaryEntry `json:"dictionary"`
}

// Translation is structurally identical to Transcription.
type Translation struct {
	Base
	SourceText     string                     `json:"source_text"`
	TranslatedText string                     `json:"translated_text"`
	Chunked        []string                   `json:"chunked"`
	Dictionary     map[string]DictionaryEntry `json:"dictionary"`
}

// Hint carries suggested learner replies.
type Hint struct {
	Base
	Hints []HintOption `json:"hints"`
}

// ErrorMessage reports a recoverable (session-continuing) failure.
type ErrorMessage struct {
	Base
	Text string `json:"text"`
}

// Processing reports out-of-band status, e.g. a debug latency breakdown
// carried as a JSON-encoded Status string.
type Processing struct {
	Base
	Status string `json:"status"`
}

// NewInitialize builds an Initialize envelope with the Type discriminator
// and timestamp populated, mirroring multivox/types.py's pydantic default
// factories (time.time() / Literal[type]).
func NewInitialize(role Role, text string, ts float64) *Initialize {
	return &Initialize{Base: Base{Type: KindInitialize, Role: role, Timestamp: ts}, Text: text}
}

func NewText(role Role, text string, endOfTurn bool, ts float64) *Text {
	return &Text{Base: Base{Type: KindText, Role: role, Timestamp: ts, EndOfTurn: endOfTurn}, Text: text}
}

func NewAudio(role Role, data []byte, mimeType string, endOfTurn bool, ts float64) *Audio {
	return &Audio{Base: Base{Type: KindAudio, Role: role, Timestamp: ts, EndOfTurn: endOfTurn}, AudioData: data, MimeType: mimeType}
}

func NewTranscription(role Role, sourceText, translatedText string, chunked []string, dict map[string]DictionaryEntry, ts float64) *Transcription {
	return &Transcription{
		Base:           Base{Type: KindTranscription, Role: role, Timestamp: ts, EndOfTurn: true},
		SourceText:     sourceText,
		TranslatedText: translatedText,
		Chunked:        chunked,
		Dictionary:     dict,
	}
}

func NewTranslation(role Role, sourceText, translatedText string, chunked []string, dict map[string]DictionaryEntry, ts float64) *Translation {
	return &Translation{
		Base:           Base{Type: KindTranslation, Role: role, Timestamp: ts, EndOfTurn: true},
		SourceText:     sourceText,
		TranslatedText: translatedText,
		Chunked:        chunked,
		Dictionary:     dict,
	}
}

func NewHint(role Role, hints []HintOption, ts float64) *Hint {
	return &Hint{Base: Base{Type: KindHint, Role: role, Timestamp: ts, EndOfTurn: true}, Hints: hints}
}

func NewError(role Role, text string, ts float64) *ErrorMessage {
	return &ErrorMessage{Base: Base{Type: KindError, Role: role, Timestamp: ts}, Text: text}
}

func NewProcessing(status string, ts float64) *Processing {
	return &Processing{Base: Base{Type: KindProcessing, Role: RoleSystem, Timestamp: ts, EndOfTurn: true}, Status: status}
}

// discriminator peeks at the "type" field without committing to a concrete
// struct, the Go-native equivalent of pydantic's Discriminator field.
type discriminator struct {
	Type Kind `json:"type"`
}

// Parse decodes a wire frame into its concrete Message, dispatching on the
// "type" discriminator. An unrecognized type yields ErrUnknownType, which
// the caller maps onto a protocol-error close (code 1008).
func Parse(data []byte) (Message, error) {
	var d discriminator
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing message envelope: %w", err)
	}

	var msg Message
	switch d.Type {
	case KindInitialize:
		msg = &Initialize{}
	case KindText:
		msg = &Text{}
	case KindAudio:
		msg = &Audio{}
	case KindTranscription:
		msg = &Transcription{}
	case KindTranslation:
		msg = &Translation{}
	case KindHint:
		msg = &Hint{}
	case KindError:
		msg = &ErrorMessage{}
	case KindProcessing:
		msg = &Processing{}
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrUnknownType, d.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("parsing %s message: %w", d.Type, err)
	}
	return msg, nil
}

// Encode serializes a Message back to its wire JSON form.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", msg.Kind(), err)
	}
	return data, nil
}

// ErrUnknownType is returned by Parse when the "type" discriminator isn't
// one of the closed Kind values.
var ErrUnknownType = fmt.Errorf("unknown message type")
