// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package webhook

import (
	"strings"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// Classify derives the coarse retention category for an event type.
//
// Rule order matters: presence/personal_notes substrings win over the
// user_ prefix so "user.presence_status_updated" lands in presence_events,
// not user_events.
func Classify(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "phone.call"):
		return models.CategoryCallEvents
	case strings.Contains(eventType, "presence"), strings.Contains(eventType, "personal_notes"):
		return models.CategoryPresenceEvents
	case strings.Contains(eventType, "voicemail"):
		return models.CategoryVoicemailEvents
	case strings.Contains(eventType, "sms"):
		return models.CategorySMSEvents
	case strings.Contains(eventType, "user_"):
		return models.CategoryUserEvents
	case strings.Contains(eventType, "common_area"):
		return models.CategoryCommonAreaEvents
	default:
		return models.CategoryOtherEvents
	}
}
