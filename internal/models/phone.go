// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package models defines the normalized Zoom Phone resource types and the
// webhook/push event records shared across the cache, ingress and API layers.
package models

// PhoneNumber is a number assigned to a user, common area or device.
type PhoneNumber struct {
	ID     string `json:"id,omitempty"`
	Number string `json:"number"`
}

// PhoneUser is a Zoom Phone user as returned by the phone users listing.
type PhoneUser struct {
	ID              string        `json:"id"`
	Email           string        `json:"email,omitempty"`
	Name            string        `json:"name,omitempty"`
	ExtensionID     string        `json:"extension_id,omitempty"`
	ExtensionNumber int64         `json:"extension_number,omitempty"`
	SiteID          string        `json:"site_id,omitempty"`
	Status          string        `json:"status,omitempty"` // activate, deactivate
	PresenceStatus  string        `json:"presence_status,omitempty"`
	PersonalNotes   string        `json:"personal_notes,omitempty"`
	PhoneNumbers    []PhoneNumber `json:"phone_numbers,omitempty"`
	Department      string        `json:"department,omitempty"`
	CostCenter      string        `json:"cost_center,omitempty"`
}

// Site is a Zoom Phone site (a physical or logical location).
type Site struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SiteCode int    `json:"site_code,omitempty"`
	Country  string `json:"country,omitempty"`
}

// CommonArea is a common-area phone (lobby, break room, hot desk).
type CommonArea struct {
	ID              string        `json:"id"`
	DisplayName     string        `json:"display_name"`
	ExtensionNumber int64         `json:"extension_number,omitempty"`
	SiteID          string        `json:"site_id,omitempty"`
	Status          string        `json:"status,omitempty"`
	PhoneNumbers    []PhoneNumber `json:"phone_numbers,omitempty"`
}

// DeviceAssignee links a provisioned device to its owner.
type DeviceAssignee struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	ExtensionNumber int64  `json:"extension_number,omitempty"`
}

// Device is a provisioned desk phone or ATA.
type Device struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name,omitempty"`
	DeviceType  string           `json:"device_type,omitempty"`
	MacAddress  string           `json:"mac_address,omitempty"`
	Status      string           `json:"status,omitempty"` // online, offline
	SiteID      string           `json:"site_id,omitempty"`
	Assignees   []DeviceAssignee `json:"assignee,omitempty"`
}

// PhoneUserPresence is the near-real-time presence state of one user.
// Cached under a per-user key with a short TTL.
type PhoneUserPresence struct {
	UserID        string `json:"user_id"`
	Status        string `json:"status"` // Available, Away, Do_Not_Disturb, In_Meeting, On_Phone_Call, Offline
	PersonalNotes string `json:"personal_notes,omitempty"`
	UpdatedAt     int64  `json:"updated_at,omitempty"` // epoch millis of the last mutation
}
