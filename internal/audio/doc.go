// Package audio plays a short cue when a flash notification appears. Sounds
// are configured per category and decoded with beep (WAV, OGG, MP3).
package audio
