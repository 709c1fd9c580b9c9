package motionplan

import (
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"go.viam.com/trajsim/logging"
	"go.viam.com/trajsim/utils"
)

// Request is everything a simulation result depends on.
type Request struct {
	Waypoints []Waypoint
	Limits    Limits
	TimeStep  time.Duration
}

// Fingerprint returns a content hash of the request. Requests with equal content have equal
// fingerprints.
func (r Request) Fingerprint() (uint64, error) {
	return hashstructure.Hash(r, hashstructure.FormatV2, nil)
}

// Result is a finished simulation. Results are shared between callers and must not be modified.
type Result struct {
	Plan      *Plan
	Samples   []Sample
	CycleTime float64
	Stats     Stats
}

// Simulate resolves, samples and summarises req.
func Simulate(req Request, logger logging.Logger) (*Result, error) {
	if req.TimeStep <= 0 {
		return nil, newInvalidTimeStepError(req.TimeStep)
	}
	plan, err := NewPlanner(req.Limits, logger).Resolve(req.Waypoints)
	if err != nil {
		return nil, err
	}
	sampler, err := NewSampler(plan, req.TimeStep)
	if err != nil {
		return nil, err
	}
	samples := sampler.Collect()
	st, err := ComputeStats(plan, samples)
	if err != nil {
		return nil, err
	}
	return &Result{Plan: plan, Samples: samples, CycleTime: sampler.TotalTime(), Stats: st}, nil
}

// Cache memoises simulation results by request fingerprint. Concurrent requests with the same
// fingerprint share a single computation. Failed computations are not remembered.
type Cache struct {
	logger  logging.Logger
	compute func(Request, logging.Logger) (*Result, error)

	group   singleflight.Group
	mu      sync.RWMutex
	results map[uint64]*Result

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache returns an empty cache.
func NewCache(logger logging.Logger) *Cache {
	return &Cache{
		logger:  logger,
		compute: Simulate,
		results: map[uint64]*Result{},
	}
}

// Get returns the result for req, computing it unless an equal request has been served before.
func (c *Cache) Get(req Request) (*Result, error) {
	key, err := req.Fingerprint()
	if err != nil {
		return nil, errors.Wrap(err, "fingerprinting simulation request")
	}
	if res, ok := c.lookup(key); ok {
		c.hits.Inc()
		return res, nil
	}

	v, err, shared := c.group.Do(strconv.FormatUint(key, 16), func() (interface{}, error) {
		// another caller may have finished between the lookup and joining the group
		if res, ok := c.lookup(key); ok {
			c.hits.Inc()
			return res, nil
		}
		c.misses.Inc()
		res, err := c.compute(req, c.logger)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.results[key] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debugw("shared in-flight simulation", "fingerprint", key)
	}
	return utils.AssertType[*Result](v)
}

func (c *Cache) lookup(key uint64) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[key]
	return res, ok
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Hits returns how many calls were served from memory.
func (c *Cache) Hits() uint64 {
	return c.hits.Load()
}

// Misses returns how many computations were started.
func (c *Cache) Misses() uint64 {
	return c.misses.Load()
}
