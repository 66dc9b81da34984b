package logger

import (
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// sampledEvents bounds how many distinct event names keep their own counter.
const sampledEvents = 256

// eventSampler lets num of every den debug lines through, counted per event name
// so a chatty event does not starve quieter ones.
type eventSampler struct {
	mu       sync.Mutex
	num      int
	den      int
	counters *lru.Cache[string, int]
}

func newEventSampler(num, den int) *eventSampler {
	counters, _ := lru.New[string, int](sampledEvents)
	s := &eventSampler{counters: counters}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and resets every counter. A non-positive part disables sampling.
func (s *eventSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Purge()
	if num <= 0 || den <= 0 {
		s.num, s.den = 0, 0
		return
	}
	s.num, s.den = min(num, den), den
}

// Allow reports whether the next line for event passes.
func (s *eventSampler) Allow(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.num <= 0 || s.den <= 0 {
		return true
	}
	n, _ := s.counters.Get(event)
	n++
	if n > s.den {
		n = 1
	}
	s.counters.Add(event, n)
	return n <= s.num
}

// parseRatioSpec reads "num/den" or a bare "den" (meaning 1/den).
// Unparseable or non-positive input yields (0, 0).
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if a, b, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	den, err := strconv.Atoi(spec)
	if err != nil || den <= 0 {
		return 0, 0
	}
	return 1, den
}
