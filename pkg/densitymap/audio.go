package densitymap

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2/audio"
	mp3 "github.com/hajimehoshi/go-mp3"
)

const callSampleRate = 44100

// CallMetadataCallback receives the title and recordist credit of the call
// sample that starts playing, for on-screen attribution.
type CallMetadataCallback func(title, recordist string)

// CallPlayer loops recorded call samples for the selected species while the
// viewer runs. Samples live as MP3 files in a flat directory; a file belongs
// to a species when its name starts with the species name (lowercased,
// spaces as underscores).
type CallPlayer struct {
	Dir        string
	OnMetadata CallMetadataCallback

	ctx    *audio.Context
	mu     sync.Mutex
	player *audio.Player
}

func NewCallPlayer(dir string) *CallPlayer {
	return &CallPlayer{Dir: dir, ctx: audio.NewContext(callSampleRate)}
}

// Play stops whatever is playing and starts looping a call sample for the
// given species. Missing samples are logged, not an error: audio is an
// optional layer.
func (p *CallPlayer) Play(species string) {
	p.Stop()

	candidates, err := p.samplesFor(species)
	if err != nil {
		log.Printf("Call samples unavailable: %v", err)
		return
	}
	if len(candidates) == 0 {
		log.Printf("No call sample for %q in %s", species, p.Dir)
		return
	}
	path := candidates[rand.Intn(len(candidates))]

	f, err := os.Open(path)
	if err != nil {
		log.Printf("Failed to open call sample %s: %v", path, err)
		return
	}
	if meta, err := tag.ReadFrom(f); err == nil && p.OnMetadata != nil {
		p.OnMetadata(meta.Title(), meta.Artist())
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return
	}

	d, err := mp3.NewDecoder(f)
	if err != nil {
		log.Printf("Failed to decode %s: %v", path, err)
		f.Close()
		return
	}
	stream := audio.Resample(d, d.Length(), d.SampleRate(), callSampleRate)
	// Loop length must stay aligned to whole 16-bit stereo frames.
	length := d.Length() * int64(callSampleRate) / int64(d.SampleRate()) / 4 * 4
	loop := audio.NewInfiniteLoop(stream, length)

	player, err := p.ctx.NewPlayer(loop)
	if err != nil {
		log.Printf("Failed to start call playback: %v", err)
		f.Close()
		return
	}
	player.SetVolume(0.5)
	player.Play()
	log.Printf("Playing call sample: %s", filepath.Base(path))

	p.mu.Lock()
	p.player = player
	p.mu.Unlock()
}

// Stop halts the current sample, if any.
func (p *CallPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
}

func (p *CallPlayer) samplesFor(species string) ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, err
	}
	slug := strings.ReplaceAll(strings.ToLower(species), " ", "_")
	var matches []string
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !strings.HasSuffix(name, ".mp3") {
			continue
		}
		if strings.HasPrefix(name, slug) {
			matches = append(matches, filepath.Join(p.Dir, entry.Name()))
		}
	}
	return matches, nil
}
