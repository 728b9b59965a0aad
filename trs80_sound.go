// trs80_sound.go - cassette port output rendered as samples

package main

import "sync"

const (
	trs80SampleRate = 44100
	trs80EdgeQueue  = 8192
)

// 2-bit cassette levels map to these amplitudes.
var trs80LevelAmp = [4]float32{0, 0.4, -0.4, 0}

type soundEdge struct {
	t     uint64
	level byte
}

// TRS80Beeper collects level changes from the CPU goroutine and turns them
// into mono float32 samples for the audio backend.
type TRS80Beeper struct {
	mu      sync.Mutex
	edges   []soundEdge
	level   byte
	clock   float64 // T-state position of the next sample
	perTick float64 // T-states per sample
	synced  bool
}

func NewTRS80Beeper(clockHz, sampleRate int) *TRS80Beeper {
	return &TRS80Beeper{perTick: float64(clockHz) / float64(sampleRate)}
}

func (b *TRS80Beeper) Level(tcount uint64, level byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.edges) >= trs80EdgeQueue {
		// The reader stalled; keep only the latest state.
		b.level = b.edges[len(b.edges)-1].level
		b.clock = float64(b.edges[len(b.edges)-1].t)
		b.edges = b.edges[:0]
	}
	if !b.synced {
		b.clock = float64(tcount)
		b.synced = true
	}
	b.edges = append(b.edges, soundEdge{t: tcount, level: level})
}

// Render fills out with samples. While no edges are queued the last level is
// held and the sample clock does not advance.
func (b *TRS80Beeper) Render(out []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	consumed := 0
	for i := range out {
		if consumed < len(b.edges) {
			for consumed < len(b.edges) && float64(b.edges[consumed].t) <= b.clock {
				b.level = b.edges[consumed].level
				consumed++
			}
			b.clock += b.perTick
		}
		out[i] = trs80LevelAmp[b.level&3]
	}
	b.edges = append(b.edges[:0], b.edges[consumed:]...)
}
