package storage

// Package storage keeps a journal of what the bot told the user and which
// cycles failed, so diagnostics stay queryable after the fact.
//
// The journal is strictly write-behind observability: poll state (cursor,
// last verdict) is never persisted, and a restart always begins clean.
