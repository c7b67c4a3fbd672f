// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package session implements the session orchestrator: per-connection
// assembly of the chat bus and its subscribers, upstream connect/close
// lifecycle, and any-one-exits teardown, mirroring
// practice_session()/handle_gemini_session() (multivox/app.py).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rapidaai/mediator/bus"
	"github.com/rapidaai/mediator/errs"
	"github.com/rapidaai/mediator/message"
	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/providers/hint"
	"github.com/rapidaai/mediator/providers/live"
	"github.com/rapidaai/mediator/providers/respond"
	"github.com/rapidaai/mediator/providers/stt"
	"github.com/rapidaai/mediator/providers/translate"
	"github.com/rapidaai/mediator/providers/tts"
	"github.com/rapidaai/mediator/providers/vad"
	"github.com/rapidaai/mediator/socket"
	"github.com/rapidaai/mediator/subscriber"
	"github.com/rapidaai/mediator/turn"
)

// Mode selects which subscriber set the orchestrator assembles.
type Mode string

const (
	ModeLive        Mode = "live"
	ModeStepByStep  Mode = "step-by-step"
)

// Request carries the per-connection parameters the client supplied on
// accept, already read from the query string by the caller.
type Request struct {
	Mode             Mode
	PracticeLanguage string
	NativeLanguage   string
	AudioModality    bool
	Scenario         string
}

// Dependencies are the long-lived, process-wide collaborators the
// orchestrator wires into every session it runs.
type Dependencies struct {
	Connector   live.Connector
	Transcriber stt.Transcriber
	Translator  translate.Translator
	Hinter      hint.Hinter
	Responder   respond.Responder
	Synthesizer tts.Synthesizer
	VAD         vad.Provider
	Logger      commons.Logger

	LiveModel string

	ClientSampleRate       int
	UpstreamConnectTimeout time.Duration
	UpstreamCloseTimeout   time.Duration
	TaskDrainTimeout       time.Duration
}

// Orchestrator runs one mediated session per Run call.
type Orchestrator struct {
	deps Dependencies
}

// New builds an Orchestrator sharing deps across every session it runs.
func New(deps Dependencies) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Run drives one session end to end: language validation, bus and
// subscriber assembly, the initialize handshake, and teardown. It returns
// once the socket has been closed.
func (o *Orchestrator) Run(ctx context.Context, sock *socket.TypedSocket, req Request) error {
	sessionID := uuid.NewString()

	practice, ok := message.LookupLanguage(req.PracticeLanguage)
	if !ok {
		_ = sock.Close(websocket.ClosePolicyViolation, "unsupported practice_language")
		return errs.Protocol(fmt.Sprintf("unsupported practice_language %q", req.PracticeLanguage), nil)
	}
	native, ok := message.LookupLanguage(req.NativeLanguage)
	if !ok {
		_ = sock.Close(websocket.ClosePolicyViolation, "unsupported native_language")
		return errs.Protocol(fmt.Sprintf("unsupported native_language %q", req.NativeLanguage), nil)
	}

	o.deps.Logger.Infof("session %s: starting mode=%s practice=%s native=%s", sessionID, req.Mode, practice.Abbreviation, native.Abbreviation)
	defer o.deps.Logger.Infof("session %s: ended", sessionID)

	chatBus := bus.New(o.deps.Logger)

	var upstream live.Session
	if req.Mode == ModeLive {
		connectCtx, cancel := context.WithTimeout(ctx, o.deps.UpstreamConnectTimeout)
		session, err := o.deps.Connector.Connect(connectCtx, live.Options{
			Model:           o.deps.LiveModel,
			SystemPrompt:    req.Scenario,
			ResponseAsAudio: req.AudioModality,
		})
		cancel()
		if err != nil {
			_ = sock.Close(websocket.CloseInternalServerErr, "upstream connect failed")
			return errs.Upstream("connecting upstream session", err)
		}
		upstream = session
	}

	tasks := o.assemble(chatBus, sock, upstream, req, practice, native)
	for _, t := range tasks {
		chatBus.Subscribe(t)
	}

	if err := chatBus.Publish(ctx, message.NewInitialize(message.RoleUser, req.Scenario, nowTimestamp())); err != nil {
		o.deps.Logger.Errorf("session: publishing initialize failed: %v", err)
	}

	runCtx, cancelRun := context.WithCancel(ctx)

	var pairs []taskChan
	for _, t := range tasks {
		for _, ch := range t.Start(runCtx) {
			pairs = append(pairs, taskChan{task: t, ch: ch})
		}
	}

	terminator := waitAny(pairs)

	for _, t := range tasks {
		t.Stop()
	}

	if upstream != nil {
		closeUpstream(upstream, o.deps.UpstreamCloseTimeout)
	}

	cancelRun()
	drain(pairs, o.deps.TaskDrainTimeout)

	var terminatingErr error
	if terminator != nil {
		terminatingErr = terminator.Err()
	}
	code := errs.CloseCode(terminatingErr)
	reason := "session ended"
	if terminatingErr != nil {
		reason = terminatingErr.Error()
	}
	_ = sock.Close(code, reason)

	if errors.Is(terminatingErr, errs.ErrClientDisconnect) {
		return nil
	}
	return terminatingErr
}

// assemble builds the subscriber set for req.Mode in the deterministic
// order the orchestrator always starts them in.
func (o *Orchestrator) assemble(chatBus *bus.ChatBus, sock *socket.TypedSocket, upstream live.Session, req Request, practice, native message.Language) []subscriber.Task {
	tasks := []subscriber.Task{
		subscriber.NewUserReader(sock, chatBus, o.deps.Logger),
		subscriber.NewUserWriter(sock, o.deps.Logger),
	}

	if req.Mode == ModeLive {
		tasks = append(tasks,
			subscriber.NewUpstreamReader(upstream, chatBus, o.deps.Logger),
			subscriber.NewUpstreamWriter(upstream, o.deps.Logger),
			subscriber.NewBulkEnrichmentTask(chatBus, o.deps.Transcriber, o.deps.Translator, o.deps.Hinter, practice, native, o.deps.Logger),
		)
		return tasks
	}

	detector := turn.New(o.deps.VAD, o.deps.ClientSampleRate)
	tasks = append(tasks, subscriber.NewStepByStepEnrichmentTask(
		chatBus, detector, o.deps.Responder, o.deps.Synthesizer, req.Scenario, practice, native, req.AudioModality, o.deps.Logger,
	))
	return tasks
}

// taskChan pairs one of a task's done channels with the task that owns it,
// so the orchestrator can learn which task ended the session and inspect
// its terminating error.
type taskChan struct {
	task subscriber.Task
	ch   <-chan struct{}
}

// waitAny blocks until the first pair's channel closes and returns the
// owning task, or nil if pairs is empty.
func waitAny(pairs []taskChan) subscriber.Task {
	if len(pairs) == 0 {
		return nil
	}

	first := make(chan subscriber.Task, 1)
	var once sync.Once
	for _, p := range pairs {
		go func(p taskChan) {
			<-p.ch
			once.Do(func() { first <- p.task })
		}(p)
	}
	return <-first
}

// closeUpstream closes session with a best-effort budget: the close call
// may hang, and the orchestrator must not.
func closeUpstream(session live.Session, budget time.Duration) {
	done := make(chan struct{})
	go func() {
		_ = session.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(budget):
	}
}

// drain waits for every remaining task's done channel with a single
// overall budget, so a stuck reader loop cannot block teardown forever.
func drain(pairs []taskChan, budget time.Duration) {
	if len(pairs) == 0 {
		return
	}

	done := make(chan struct{})
	go func() {
		for _, p := range pairs {
			<-p.ch
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(budget):
	}
}

func nowTimestamp() float64 {
	return float64(time.Now().UnixMilli()) / 1000
}
