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


package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	telnyxMessagesURL = "https://api.telnyx.com/v2/messages"
	twilioAPIBase     = "https://api.twilio.com"
)

// ErrNotConfigured is returned when a provider is missing credentials.
var ErrNotConfigured = errors.New("sms provider not configured")

// Sender is the interface any SMS backend must implement. Backends are
// swappable without touching the dispatcher or the outbox relay.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// ProviderError is a non-2xx answer from an SMS provider.
type ProviderError struct {
	Provider string
	Status   int
	Code     string
	Detail   string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s returned %d (code %s): %s", e.Provider, e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Detail)
}

// --- Twilio ---

// TwilioSender sends messages through the Twilio Messages REST API using
// net/http with basic auth.
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

// NewTwilioSender creates a TwilioSender. fromNumber is the Twilio number
// in E.164 format.
func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts msg to Twilio. Auth failures, invalid numbers and provider
// outages all come back as errors; the caller decides what to tell the user.
func (s *TwilioSender) Send(ctx context.Context, msg OutboundMessage) error {
	if s.accountSID == "" || s.authToken == "" || s.fromNumber == "" {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", s.fromNumber)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := &ProviderError{Provider: "twilio", Status: resp.StatusCode, Detail: string(respBody)}
		var te twilioError
		if json.Unmarshal(respBody, &te) == nil && te.Message != "" {
			perr.Code = fmt.Sprint(te.Code)
			perr.Detail = te.Message
		}
		return perr
	}
	return nil
}

// --- Telnyx ---

// TelnyxSender sends outbound SMS messages via the Telnyx REST API.
type TelnyxSender struct {
	apiKey     string
	fromNumber string
	url        string
	httpClient *http.Client
}

// NewTelnyxSender creates a TelnyxSender ready to use.
//
// apiKey is the Telnyx API v2 key (starts with "KEY...").
// fromNumber is the Telnyx-provisioned number in E.164 format.
func NewTelnyxSender(apiKey, fromNumber string) *TelnyxSender {
	return &TelnyxSender{
		apiKey:     apiKey,
		fromNumber: fromNumber,
		url:        telnyxMessagesURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type telnyxRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// telnyxResponse captures just the fields we care about.
type telnyxResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Send dispatches msg to the Telnyx API. It returns a non-nil error if the
// HTTP request fails or Telnyx reports an error.
func (s *TelnyxSender) Send(ctx context.Context, msg OutboundMessage) error {
	if s.apiKey == "" || s.fromNumber == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(telnyxRequest{
		From: s.fromNumber,
		To:   msg.To,
		Text: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var telResp telnyxResponse
	decodeErr := json.Unmarshal(respBody, &telResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := &ProviderError{Provider: "telnyx", Status: resp.StatusCode, Detail: string(respBody)}
		if decodeErr == nil && len(telResp.Errors) > 0 {
			perr.Code = telResp.Errors[0].Code
			perr.Detail = telResp.Errors[0].Detail
		}
		return perr
	}
	if decodeErr == nil && len(telResp.Errors) > 0 {
		return &ProviderError{
			Provider: "telnyx",
			Status:   resp.StatusCode,
			Code:     telResp.Errors[0].Code,
			Detail:   telResp.Errors[0].Detail,
		}
	}
	return nil
}

// --- Log ---

// LogSender writes messages to the log instead of sending them. It is the
// backend when no provider credentials are configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs msg and always succeeds.
func (s *LogSender) Send(_ context.Context, msg OutboundMessage) error {
	s.logger.Warn("sms provider not configured, logging message instead",
		zap.String("id", msg.ID),
		zap.String("to", MaskNumber(msg.To)),
		zap.String("body", msg.Body))
	return nil
}

// MaskNumber hides all but the last four digits of a phone number.
func MaskNumber(number string) string {
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
