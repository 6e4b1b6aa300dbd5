// Package playback coordinates a single active playback session across two
// independently rendered player surfaces: a grid of video elements and one
// persistent audio bar. The coordinator is the one place the mutual-exclusion
// invariant lives: at most one video and the audio line never emit sound at
// the same time.
package playback

import (
	"sync"
)

// Player is a playback sink the coordinator can silence.
type Player interface {
	Pause()
}

// AudioPlayer is the persistent audio line. Track selection and transport
// run through the coordinator; volume and mute pass straight through.
type AudioPlayer interface {
	Player
	PlayTrack(index int)
	Seek(seconds float64)
	SetVolume(volume float64)
	SetMuted(muted bool)
}

// State is a snapshot of the coordination state.
type State struct {
	ActiveVideoID *uint
	TrackIndex    int
	AudioPlaying  bool
}

// Coordinator is the shared playback state machine. Every transition is
// caused by a discrete user input or a player-emitted completion event; there
// are no timers and no background goroutines.
type Coordinator struct {
	mu sync.Mutex

	videoPlayers map[uint]Player
	audioPlayer  AudioPlayer

	activeVideoID *uint
	trackIndex    int
	trackCount    int
	audioPlaying  bool
}

// NewCoordinator creates an idle coordinator with no tracks.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		videoPlayers: make(map[uint]Player),
	}
}

// RegisterVideoPlayer attaches the player surface for one video element.
func (c *Coordinator) RegisterVideoPlayer(videoID uint, p Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videoPlayers[videoID] = p
}

// UnregisterVideoPlayer detaches a video element, e.g. when it leaves the
// visible set. A departing active video stops being active.
func (c *Coordinator) UnregisterVideoPlayer(videoID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.videoPlayers, videoID)
	if c.activeVideoID != nil && *c.activeVideoID == videoID {
		c.activeVideoID = nil
	}
}

// RegisterAudioPlayer attaches the persistent audio bar.
func (c *Coordinator) RegisterAudioPlayer(p AudioPlayer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audioPlayer = p
}

// PlayVideo marks the video active and silences everything else: the
// previously active video (if different) and the audio line.
func (c *Coordinator) PlayVideo(videoID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeVideoID != nil && *c.activeVideoID != videoID {
		if p, ok := c.videoPlayers[*c.activeVideoID]; ok {
			p.Pause()
		}
	}
	id := videoID
	c.activeVideoID = &id

	if c.audioPlaying {
		if c.audioPlayer != nil {
			c.audioPlayer.Pause()
		}
		c.audioPlaying = false
	}
}

// VideoPaused records that a video stopped (user pause or element ended).
func (c *Coordinator) VideoPaused(videoID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeVideoID != nil && *c.activeVideoID == videoID {
		c.activeVideoID = nil
	}
}

// PlayAudio starts or resumes the audio line on the current track, silencing
// any playing video first.
func (c *Coordinator) PlayAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startAudioLocked(c.trackIndex)
}

// PauseAudio stops the audio line without moving the track pointer.
func (c *Coordinator) PauseAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audioPlayer != nil {
		c.audioPlayer.Pause()
	}
	c.audioPlaying = false
}

// Next advances to the following track, wrapping from last to first. The new
// track starts playing only when audio already is; while paused it is merely
// selected.
func (c *Coordinator) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trackCount == 0 {
		return
	}
	c.advanceLocked((c.trackIndex + 1) % c.trackCount)
}

// Prev steps back one track, wrapping from first to last, with the same
// play-only-if-playing rule as Next.
func (c *Coordinator) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trackCount == 0 {
		return
	}
	c.advanceLocked((c.trackIndex - 1 + c.trackCount) % c.trackCount)
}

func (c *Coordinator) advanceLocked(index int) {
	if c.audioPlaying {
		c.startAudioLocked(index)
		return
	}
	c.trackIndex = index
}

// SelectTrack jumps to a playlist entry and plays it. Out-of-range indexes
// are ignored.
func (c *Coordinator) SelectTrack(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= c.trackCount {
		return
	}
	c.startAudioLocked(index)
}

// TrackEnded is the completion event from the audio element. It behaves like
// Next, which is what makes continuous wrapped playback work: the machine is
// still in the playing state when the element runs out, so the next track
// starts immediately.
func (c *Coordinator) TrackEnded() {
	c.Next()
}

// startAudioLocked is the single transition into the audio-playing state:
// silence the active video, move the pointer, start the track.
func (c *Coordinator) startAudioLocked(index int) {
	if c.activeVideoID != nil {
		if p, ok := c.videoPlayers[*c.activeVideoID]; ok {
			p.Pause()
		}
		c.activeVideoID = nil
	}

	c.trackIndex = index
	c.audioPlaying = true
	if c.audioPlayer != nil {
		c.audioPlayer.PlayTrack(index)
	}
}

// Seek sets the audio position directly. No state transition.
func (c *Coordinator) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audioPlayer != nil {
		c.audioPlayer.Seek(seconds)
	}
}

// SetVolume passes the volume through. No cross-effects on the machine.
func (c *Coordinator) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audioPlayer != nil {
		c.audioPlayer.SetVolume(volume)
	}
}

// SetMuted passes mute through. No cross-effects on the machine.
func (c *Coordinator) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audioPlayer != nil {
		c.audioPlayer.SetMuted(muted)
	}
}

// Reconcile is called after a store swap. It clamps the track pointer to the
// new list length and drops an active video id that no longer exists, keeping
// the machine consistent while the underlying list mutates.
func (c *Coordinator) Reconcile(trackCount int, videoExists func(uint) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.trackCount = trackCount
	if c.trackIndex >= trackCount {
		c.trackIndex = 0
	}
	if trackCount == 0 {
		c.audioPlaying = false
	}

	if c.activeVideoID != nil && videoExists != nil && !videoExists(*c.activeVideoID) {
		c.activeVideoID = nil
	}
}

// State returns a snapshot of the machine.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{TrackIndex: c.trackIndex, AudioPlaying: c.audioPlaying}
	if c.activeVideoID != nil {
		id := *c.activeVideoID
		s.ActiveVideoID = &id
	}
	return s
}
