// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package webhook implements inbound Zoom webhook ingress: signature
// verification, the URL-validation handshake, event classification into
// coarse categories, bounded per-category retention, and presence-affecting
// cache mutations via the event bus.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns the Zoom v0 signature for a raw request body:
// "v0=" + hex(HMAC-SHA256(secret, "v0:" + timestamp + ":" + body)).
//
// The HMAC must run over the exact raw bytes received on the wire; hashing
// a re-serialized JSON object breaks on key reordering.
func ComputeSignature(secret, timestamp string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:"))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(":"))
	mac.Write(rawBody)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the v0 HMAC of rawBody.
// Comparison is constant-time.
func VerifySignature(rawBody []byte, signature, timestamp, secret string) bool {
	expected := ComputeSignature(secret, timestamp, rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HashToken returns hex(HMAC-SHA256(secret, token)), the encryptedToken half
// of the URL-validation handshake response.
func HashToken(secret, token string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
