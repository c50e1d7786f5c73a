// Package main hosts the tabibot command line.
//
// The Cobra tree exposes the Telegram bot (serve), a terminal quiz player
// (play), course inspection (chapters, narrate, wordbook), the leaderboard, and
// configuration scaffolding. Configuration is resolved once per invocation
// and shared through commandContext; the internal packages do the work.
package main
