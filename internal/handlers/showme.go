// catinci-showme - kid-safe "show me" webhook
// Copyright (C) 2026  catinci-showme contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// Package handlers serves the voice agent webhooks.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/natattack03/catinci-showme/internal/answer"
	"github.com/natattack03/catinci-showme/internal/links"
	"github.com/natattack03/catinci-showme/internal/sms"
)

// Spoken strings are read verbatim by the voice agent.
const (
	SpokenNeedTopic      = "Can you tell me what you want to see first, little explorer?"
	SpokenMissingPhone   = "I couldn't find a phone number for your grown-up."
	SpokenDispatchFailed = "I tried to send pictures and videos to your grown-up, but something went wrong. Can we try again in a little bit?"
	SpokenTrouble        = "I'm having a little trouble thinking right now."
)

// SpokenSent is the reply after links were sent for topic.
func SpokenSent(topic string) string {
	return `I sent pictures and videos about "` + topic + `" to your grown-up!`
}

const maxBodyBytes = 64 << 10

// TopicStore remembers one raw topic per caller.
type TopicStore interface {
	Get(callerID string) (string, bool)
	Set(callerID, topic string)
}

// Classifier recognises "show me now" utterances.
type Classifier interface {
	IsTrigger(text string) bool
}

// Sanitizer strips unsafe words from a topic.
type Sanitizer interface {
	Sanitize(topic string) string
}

// Notifier sends links to a grown-up's phone.
type Notifier interface {
	Send(ctx context.Context, to string, l links.Links) error
}

// Answerer answers free-form questions.
type Answerer interface {
	Answer(ctx context.Context, question string) (answer.Result, error)
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Topics     TopicStore
	Classifier Classifier
	Filter     Sanitizer
	Links      links.Builder
	Notifier   Notifier
	Answerer   Answerer
	Logger     *zap.Logger
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	topics     TopicStore
	classifier Classifier
	filter     Sanitizer
	links      links.Builder
	notifier   Notifier
	answerer   Answerer
	logger     *zap.Logger
}

// New creates a new Handler.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		topics:     d.Topics,
		classifier: d.Classifier,
		filter:     d.Filter,
		links:      d.Links,
		notifier:   d.Notifier,
		answerer:   d.Answerer,
		logger:     logger,
	}
}

// Register mounts the webhook routes on r behind the given middlewares.
func (h *Handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)
		r.Post("/show_me", h.ShowMe)
		r.Post("/answer", h.Answer)
	})
}

type showMeReq struct {
	Text        string `json:"text"`
	ParentPhone string `json:"parent_phone"`
}

// spokenResp marshals a nil Spoken as null, meaning "say nothing".
type spokenResp struct {
	Spoken *string `json:"spoken"`
}

func say(s string) spokenResp { return spokenResp{Spoken: &s} }

// ShowMe handles POST /show_me.
//
// A trigger phrase sends the caller's remembered topic, sanitized, as
// search links by SMS. Anything else is remembered as the caller's new
// topic and answered with null. A missing parent_phone short-circuits
// before classification, so it never stores or sends.
func (h *Handler) ShowMe(w http.ResponseWriter, r *http.Request) {
	var req showMeReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	phone := strings.TrimSpace(req.ParentPhone)
	if text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	log := h.logger.With(zap.String("caller", sms.MaskNumber(phone)))

	if phone == "" {
		log.Info("show_me", zap.String("outcome", "missing_phone"))
		jsonOK(w, http.StatusOK, say(SpokenMissingPhone))
		return
	}

	if !h.classifier.IsTrigger(text) {
		h.topics.Set(phone, text)
		log.Info("show_me", zap.String("outcome", "stored"), zap.String("topic", text))
		jsonOK(w, http.StatusOK, spokenResp{})
		return
	}

	raw, ok := h.topics.Get(phone)
	if !ok {
		log.Info("show_me", zap.String("outcome", "no_topic"))
		jsonOK(w, http.StatusOK, say(SpokenNeedTopic))
		return
	}

	topic := h.filter.Sanitize(raw)
	l := h.links.Build(topic)
	if err := h.notifier.Send(r.Context(), phone, l); err != nil {
		log.Warn("show_me", zap.String("outcome", "dispatch_failed"), zap.Error(err))
		jsonOK(w, http.StatusOK, say(SpokenDispatchFailed))
		return
	}

	log.Info("show_me", zap.String("outcome", "sent"), zap.String("topic", topic))
	jsonOK(w, http.StatusOK, say(SpokenSent(topic)))
}

type answerReq struct {
	Text        string `json:"text"`
	ParentPhone string `json:"parent_phone"`
	UserID      string `json:"user_id"`
}

// Answer handles POST /answer. The chosen topic is remembered for the
// caller so a following "show me" sends it.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	caller := callerKey(req.ParentPhone, req.UserID)
	log := h.logger.With(zap.String("caller", sms.MaskNumber(caller)))

	if h.answerer == nil {
		log.Warn("answer", zap.Error(answer.ErrNoGenerator))
		jsonOK(w, http.StatusOK, say(SpokenTrouble))
		return
	}

	res, err := h.answerer.Answer(r.Context(), text)
	if err != nil {
		log.Error("answer", zap.Error(err))
		jsonOK(w, http.StatusOK, say(SpokenTrouble))
		return
	}

	h.topics.Set(caller, res.Topic)
	log.Info("answer", zap.String("topic", res.Topic))
	jsonOK(w, http.StatusOK, res)
}

func callerKey(phone, userID string) string {
	if p := strings.TrimSpace(phone); p != "" {
		return p
	}
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return "anonymous"
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
