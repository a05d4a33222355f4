// Package sample provides offline stand-ins for the meeting, summarization,
// wiki and Slack integrations. None of them make network calls.
package sample
