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

// sms-sender is a long-running Kafka consumer that reads outbound SMS messages
// from the "sms-outbox" topic and delivers them through Twilio or Telnyx.
// It pairs with showme running with SMS_BACKEND=kafka.
//
// Configuration shares the showme environment:
//
//	KAFKA_BROKERS         comma-separated broker list, e.g. "kafka:9092"
//	SMS_SENDER_PROVIDER   "twilio" or "telnyx"; defaults to whichever is configured
//	TWILIO_SID, TWILIO_TOKEN, TWILIO_FROM
//	TELNYX_API_KEY, TELNYX_FROM_NUMBER
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/natattack03/catinci-showme/internal/config"
	"github.com/natattack03/catinci-showme/internal/sms"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sms-sender: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("sms-sender: fatal error", zap.Error(err))
	}
	logger.Info("sms-sender: shutdown complete")
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	provider, sender, err := providerSender(cfg, os.Getenv("SMS_SENDER_PROVIDER"))
	if err != nil {
		return err
	}

	consumer := sms.NewConsumer(cfg.Kafka.Brokers, sender, logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("sms-sender: error closing consumer", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("sms-sender: starting",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("provider", provider))
	return consumer.Run(ctx)
}

// providerSender picks the real SMS provider. The outbox is never relayed
// back into Kafka or to the log backend.
func providerSender(cfg *config.Config, provider string) (string, sms.Sender, error) {
	if provider == "" {
		switch {
		case cfg.Twilio.Configured():
			provider = config.BackendTwilio
		case cfg.Telnyx.Configured():
			provider = config.BackendTelnyx
		}
	}
	switch provider {
	case config.BackendTwilio:
		if !cfg.Twilio.Configured() {
			return "", nil, errors.New("twilio requires TWILIO_SID, TWILIO_TOKEN and TWILIO_FROM")
		}
		return provider, sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From), nil
	case config.BackendTelnyx:
		if !cfg.Telnyx.Configured() {
			return "", nil, errors.New("telnyx requires TELNYX_API_KEY and TELNYX_FROM_NUMBER")
		}
		return provider, sms.NewTelnyxSender(cfg.Telnyx.APIKey, cfg.Telnyx.FromNumber), nil
	case "":
		return "", nil, errors.New("no SMS provider configured")
	}
	return "", nil, fmt.Errorf("unsupported SMS_SENDER_PROVIDER %q", provider)
}
