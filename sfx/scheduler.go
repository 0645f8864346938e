package sfx

// Scheduler lets you register sounds that should play in the future.
//
// If you are making a simulation game, the time is likely virtual,
// and this lets you use any time notion.
// If you use real time, pass seconds since some fixed point as the time.
//
// Scheduler can be used to schedule sounds to match timed animations,
// without needing to worry about executing it at exactly the right time.
//
// Remember to call Scheduler.Process() from your game loop.
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	library *Library
	sounds  []queuedSound
}

type queuedSound struct {
	id         Id
	whenToPlay float64
}

// maxLateness is how far behind a queued sound may be and still play.
const maxLateness = 3

func NewScheduler(library *Library) *Scheduler {
	return &Scheduler{
		library: library,
		sounds:  make([]queuedSound, 0, 100),
	}
}

func (fs *Scheduler) PlaySoundEffectAt(id Id, at float64) {
	fs.sounds = append(fs.sounds, queuedSound{
		whenToPlay: at,
		id:         id,
	})
}

func (fs *Scheduler) Clear() {
	fs.sounds = fs.sounds[:0]
}

// Len returns the number of queued sounds.
func (fs *Scheduler) Len() int {
	return len(fs.sounds)
}

// Process plays every sound that is due at now. Sounds more than
// maxLateness behind are dropped without playing.
func (fs *Scheduler) Process(now float64) {
	i := 0
	for i < len(fs.sounds) {
		if fs.sounds[i].whenToPlay > now {
			i++
			continue
		}
		if fs.sounds[i].whenToPlay >= now-maxLateness {
			if _, err := fs.library.Play(fs.sounds[i].id); err != nil {
				fs.library.logger.Debug("scheduled sound not played", "id", fs.sounds[i].id, "error", err)
			}
		}
		// clean array by moving the last element to the now free position
		fs.sounds[i] = fs.sounds[len(fs.sounds)-1]
		fs.sounds = fs.sounds[:len(fs.sounds)-1]
	}
}
