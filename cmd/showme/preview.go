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
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/natattack03/catinci-showme/internal/auth"
	"github.com/natattack03/catinci-showme/internal/config"
	"github.com/natattack03/catinci-showme/internal/links"
	"github.com/natattack03/catinci-showme/internal/notify"
	"github.com/natattack03/catinci-showme/internal/safety"
)

func newPreviewCmd() *cobra.Command {
	var kidFriendly bool
	cmd := &cobra.Command{
		Use:   "preview <topic...>",
		Short: "Print the SMS a topic would produce, without sending it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("kid-friendly") {
				kidFriendly = cfg.SMS.KidFriendlyQueries
			}
			topic := safety.New(cfg.Phrases.Blocked...).Sanitize(strings.Join(args, " "))
			l := links.Builder{KidFriendly: kidFriendly}.Build(topic)
			fmt.Fprintln(cmd.OutOrStdout(), notify.Body(l))
			return nil
		},
	}
	cmd.Flags().BoolVar(&kidFriendly, "kid-friendly", false, "decorate search queries with kid markers")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the voice agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWT.SigningKey == "" {
				return fmt.Errorf("SHOWME_JWT_SIGNING_KEY is not set")
			}
			tok, err := auth.New(cfg.JWT.SigningKey, cfg.JWT.Issuer).GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "voice-agent", "agent name carried in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
