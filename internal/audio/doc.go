// Package audio plays notification sounds locally. Sounds are referred to by
// name (for example "Bing" or "Ding") and mapped to WAV, OGG or MP3 files in the
// configuration; decoding and playback use the beep library.
package audio
