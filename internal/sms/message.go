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

// Package sms delivers outbound text messages through a configurable
// provider, either directly or through a Kafka outbox.
package sms

import "github.com/google/uuid"

// OutboundMessage is one text to a grown-up. It is also the JSON schema of
// records on the sms-outbox topic:
//
//	{
//	  "id":   "550e8400-e29b-41d4-a716-446655440000",
//	  "to":   "+15551234567",
//	  "body": "Here are kid-friendly pictures..."
//	}
type OutboundMessage struct {
	// ID correlates log lines and outbox records for one send.
	ID string `json:"id"`

	// To is the E.164 destination number.
	To string `json:"to"`

	// Body is the UTF-8 message text. Links push it past one segment;
	// carriers concatenate transparently.
	Body string `json:"body"`
}

// NewMessage stamps a fresh ID on a message to the given number.
func NewMessage(to, body string) OutboundMessage {
	return OutboundMessage{
		ID:   uuid.NewString(),
		To:   to,
		Body: body,
	}
}
