// Package thread turns raw host conversation messages into an ordered,
// de-duplicated email thread suitable for prompting a language model.
//
// Extraction filters out messages without content or sender information,
// sorts the remainder oldest first, resolves a display name for each sender,
// strips HTML from bodies, and pre-formats delivery dates for display.
package thread
