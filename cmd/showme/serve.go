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

package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/natattack03/catinci-showme/internal/answer"
	"github.com/natattack03/catinci-showme/internal/auth"
	"github.com/natattack03/catinci-showme/internal/config"
	"github.com/natattack03/catinci-showme/internal/handlers"
	"github.com/natattack03/catinci-showme/internal/links"
	"github.com/natattack03/catinci-showme/internal/notify"
	"github.com/natattack03/catinci-showme/internal/phrase"
	"github.com/natattack03/catinci-showme/internal/safety"
	"github.com/natattack03/catinci-showme/internal/server"
	"github.com/natattack03/catinci-showme/internal/sms"
	"github.com/natattack03/catinci-showme/internal/topics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Server)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(logger)

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	if p, ok := sender.(*sms.Publisher); ok {
		srv.OnStop(func() {
			if err := p.Close(); err != nil {
				logger.Warn("closing sms publisher", zap.Error(err))
			}
		})
	}

	classifier, err := phrase.New(cfg.Phrases.Triggers...)
	if err != nil {
		return fmt.Errorf("trigger phrases: %w", err)
	}

	var answerer handlers.Answerer
	if cfg.Gemini.APIKey != "" {
		gen, err := answer.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}
		answerer = answer.New(gen)
	} else {
		logger.Warn("GEMINI_API_KEY not set, /answer will apologise")
	}

	h := handlers.New(handlers.Deps{
		Topics:     topics.New(),
		Classifier: classifier,
		Filter:     safety.New(cfg.Phrases.Blocked...),
		Links:      links.Builder{KidFriendly: cfg.SMS.KidFriendlyQueries},
		Notifier:   notify.New(sender, cfg.SMS.Timeout, logger),
		Answerer:   answerer,
		Logger:     logger,
	})

	var guards []func(http.Handler) http.Handler
	if cfg.JWT.SigningKey != "" {
		guards = append(guards, auth.New(cfg.JWT.SigningKey, cfg.JWT.Issuer).Middleware(logger))
	} else {
		logger.Warn("SHOWME_JWT_SIGNING_KEY not set, webhooks are unauthenticated")
	}
	h.Register(srv.Router, guards...)

	logger.Info("showme starting",
		zap.String("version", version),
		zap.String("env", cfg.Server.Env),
		zap.String("sms_backend", cfg.SMS.Backend),
		zap.Bool("kid_friendly_queries", cfg.SMS.KidFriendlyQueries))

	return srv.Run(ctx, ":"+cfg.Server.Port)
}

// newSender returns the SMS backend selected by cfg. Validate has already
// checked that its credentials are present.
func newSender(cfg *config.Config, logger *zap.Logger) (sms.Sender, error) {
	switch cfg.SMS.Backend {
	case config.BackendTwilio:
		return sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From), nil
	case config.BackendTelnyx:
		return sms.NewTelnyxSender(cfg.Telnyx.APIKey, cfg.Telnyx.FromNumber), nil
	case config.BackendKafka:
		return sms.NewPublisher(cfg.Kafka.Brokers), nil
	case config.BackendLog:
		return sms.NewLogSender(logger), nil
	}
	return nil, fmt.Errorf("unknown SMS backend %q", cfg.SMS.Backend)
}
