package motionplan

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/test"

	"go.viam.com/trajsim/logging"
	"go.viam.com/trajsim/zone"
)

func zigzagRequest() Request {
	return Request{Waypoints: zigzag(), Limits: DefaultLimits(), TimeStep: DefaultTimeStep}
}

func TestFingerprint(t *testing.T) {
	a, err := zigzagRequest().Fingerprint()
	test.That(t, err, test.ShouldBeNil)
	b, err := zigzagRequest().Fingerprint()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a, test.ShouldEqual, b)

	changed := zigzagRequest()
	changed.Waypoints[2].Zone = zone.Z5
	c, err := changed.Fingerprint()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldNotEqual, a)

	changed = zigzagRequest()
	changed.TimeStep = time.Millisecond
	d, err := changed.Fingerprint()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldNotEqual, a)
}

func TestSimulate(t *testing.T) {
	logger := logging.NewTestLogger(t)
	res, err := Simulate(zigzagRequest(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.CycleTime, test.ShouldAlmostEqual, TotalTime(res.Plan))
	test.That(t, res.Stats.Samples, test.ShouldEqual, len(res.Samples))
	test.That(t, res.Samples[len(res.Samples)-1].Time, test.ShouldEqual, res.CycleTime)

	req := zigzagRequest()
	req.TimeStep = 0
	_, err = Simulate(req, logger)
	test.That(t, errors.Is(err, ErrInvalidTimeStep), test.ShouldBeTrue)

	req = zigzagRequest()
	req.Waypoints = req.Waypoints[:1]
	_, err = Simulate(req, logger)
	test.That(t, errors.Is(err, ErrInsufficientWaypoints), test.ShouldBeTrue)
}

func TestCacheServesRepeatedRequests(t *testing.T) {
	cache := NewCache(logging.NewTestLogger(t))

	first, err := cache.Get(zigzagRequest())
	test.That(t, err, test.ShouldBeNil)
	second, err := cache.Get(zigzagRequest())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second, test.ShouldEqual, first)
	test.That(t, cache.Hits(), test.ShouldEqual, 1)
	test.That(t, cache.Misses(), test.ShouldEqual, 1)

	req := zigzagRequest()
	req.TimeStep = 5 * time.Millisecond
	third, err := cache.Get(req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, third, test.ShouldNotEqual, first)
	test.That(t, cache.Misses(), test.ShouldEqual, 2)
	test.That(t, cache.Len(), test.ShouldEqual, 2)
}

func TestCacheSingleComputationInFlight(t *testing.T) {
	cache := NewCache(logging.NewTestLogger(t))
	var calls atomic.Int32
	release := make(chan struct{})
	cache.compute = func(req Request, logger logging.Logger) (*Result, error) {
		calls.Inc()
		<-release
		return Simulate(req, logger)
	}

	const callers = 8
	results := make([]*Result, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(zigzagRequest())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	test.That(t, calls.Load(), test.ShouldEqual, 1)
	test.That(t, cache.Misses(), test.ShouldEqual, 1)
	for i, res := range results {
		test.That(t, errs[i], test.ShouldBeNil)
		test.That(t, res, test.ShouldEqual, results[0])
	}
}

func TestCacheDoesNotRememberFailures(t *testing.T) {
	cache := NewCache(logging.NewTestLogger(t))
	var calls atomic.Int32
	boom := errors.New("boom")
	cache.compute = func(req Request, logger logging.Logger) (*Result, error) {
		if calls.Inc() == 1 {
			return nil, boom
		}
		return Simulate(req, logger)
	}

	_, err := cache.Get(zigzagRequest())
	test.That(t, err, test.ShouldEqual, boom)
	res, err := cache.Get(zigzagRequest())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldNotBeNil)
	test.That(t, calls.Load(), test.ShouldEqual, 2)
	test.That(t, cache.Len(), test.ShouldEqual, 1)
}
