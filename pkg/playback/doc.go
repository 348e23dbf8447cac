// Package playback sequences phrase audio. A Sequencer plays a course's
// phrases in order over an AudioSource and announces each phrase's start and
// estimated duration, which the caller uses to pace path highlighting.
package playback
