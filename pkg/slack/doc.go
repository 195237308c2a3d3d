// Package slack builds and posts Slack "Incoming Webhook" messages.
//
// The package covers the small slice of the Slack surface this repo needs:
//   - Payload/Attachment types matching the incoming-webhook JSON schema
//   - mrkdwn text helpers (Esc, Code, Pre) and destination normalization
//   - A Webhook client with context support and a bounded timeout
package slack
