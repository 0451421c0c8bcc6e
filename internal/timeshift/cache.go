package timeshift

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"sync"
	"time"

	"daymark-engine/internal/domain"
)

// Plan is a day's schedule as served to readers.
type Plan struct {
	Tasks []domain.Task     `json:"tasks"`
	Slots []domain.TimeSlot `json:"availableSlots"`
	// HasConflicts reports that at least one task was moved off busy time.
	HasConflicts bool `json:"hasConflicts"`
}

type planKey struct {
	tasks     uint64
	busy      uint64
	window    uint64
	autoShift bool
}

const maxPlans = 32

// Cache memoizes Schedule on the content of its inputs.
type Cache struct {
	mu    sync.Mutex
	plans map[planKey]Plan
}

func NewCache() *Cache {
	return &Cache{plans: make(map[planKey]Plan)}
}

// Schedule shifts tasks around busy time when autoShift is on and the day
// has busy slots; otherwise tasks pass through untouched.
func (c *Cache) Schedule(tasks []domain.Task, busy []domain.BusySlot, w Window, autoShift bool) Plan {
	key := planKey{
		tasks:     taskVersion(tasks),
		busy:      busyVersion(busy),
		window:    windowVersion(w),
		autoShift: autoShift,
	}

	c.mu.Lock()
	if p, ok := c.plans[key]; ok {
		c.mu.Unlock()
		return clonePlan(p)
	}
	c.mu.Unlock()

	p := Plan{Slots: AvailableSlots(busy, w)}
	if autoShift && len(busy) > 0 {
		p.Tasks = Shift(tasks, busy, w)
	} else {
		p.Tasks = append([]domain.Task(nil), tasks...)
	}
	for _, t := range p.Tasks {
		if t.WasAutoShifted {
			p.HasConflicts = true
			break
		}
	}

	c.mu.Lock()
	if len(c.plans) >= maxPlans {
		clear(c.plans)
	}
	c.plans[key] = p
	c.mu.Unlock()
	return clonePlan(p)
}

func clonePlan(p Plan) Plan {
	return Plan{
		Tasks: append([]domain.Task(nil), p.Tasks...),
		Slots: append([]domain.TimeSlot(nil), p.Slots...),

		HasConflicts: p.HasConflicts,
	}
}

type hasher struct{ h hash.Hash64 }

func (x hasher) str(s string) {
	_, _ = x.h.Write([]byte(s))
	_, _ = x.h.Write([]byte{0})
}

func (x hasher) num(n int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	_, _ = x.h.Write(b[:])
}

func (x hasher) when(t *time.Time) {
	if t == nil {
		x.num(-1)
		return
	}
	x.num(t.UnixNano())
}

func taskVersion(tasks []domain.Task) uint64 {
	h := fnv.New64a()
	x := hasher{h}
	for _, t := range tasks {
		x.str(t.ID)
		x.str(t.Title)
		x.str(string(t.Status))
		x.num(int64(t.Duration))
		x.when(t.StartTime)
		x.when(t.EndTime)
		x.when(t.OriginalStartTime)
		x.num(t.UpdatedAt.UnixNano())
	}
	return h.Sum64()
}

func busyVersion(busy []domain.BusySlot) uint64 {
	h := fnv.New64a()
	x := hasher{h}
	for _, b := range busy {
		x.num(b.Start.UnixNano())
		x.num(b.End.UnixNano())
	}
	return h.Sum64()
}

func windowVersion(w Window) uint64 {
	h := fnv.New64a()
	x := hasher{h}
	x.str(w.Date.Format("2006-01-02"))
	x.str(w.Date.Location().String())
	x.str(w.Start)
	x.str(w.End)
	x.num(int64(w.BufferMinutes))
	return h.Sum64()
}
