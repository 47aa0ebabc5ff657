package pipeline

import (
	"errors"
	"math"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/pbnjay/memory"
)

// DefaultWorkerMemory is the memory budgeted for one worker: a decoded image
// plus its color histogram.
const DefaultWorkerMemory int64 = 512 << 20

// EstimateWorkers returns the worker pool size.
//
// A positive override is returned as is. Otherwise the count is
// maxMemory/perWorker clamped to [1, cpus]. A non-positive perWorker falls
// back to DefaultWorkerMemory.
func EstimateWorkers(maxMemory, perWorker int64, cpus, override int) int {
	if override > 0 {
		return override
	}
	if perWorker <= 0 {
		perWorker = DefaultWorkerMemory
	}

	n := maxMemory / perWorker
	if cpus > 0 && n > int64(cpus) {
		n = int64(cpus)
	}
	if n < 1 {
		n = 1
	}
	return int(n)
}

// ParseConcurrency parses an explicit concurrency level. Anything other than
// a positive base-10 integer is an *ArgumentError.
func ParseConcurrency(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ArgumentError{Value: s, Err: ErrNotANumber}
	}
	if n <= 0 {
		return 0, &ArgumentError{Value: s, Err: ErrNotPositive}
	}
	return n, nil
}

// HeapDivisor is the share of detected memory granted to the run when no
// explicit limit is set: a quarter, the usual default heap ceiling.
const HeapDivisor = 4

// errMemoryUnknown is returned by physicalMemory when the platform cannot
// report its RAM size.
var errMemoryUnknown = errors.New("total memory unknown")

// MemorySource reports a memory size in bytes.
type MemorySource func() (uint64, error)

// MemoryLimit returns the memory budget used to size the worker pool.
//
// A soft limit set through GOMEMLIMIT is used as is. Otherwise the budget is
// a HeapDivisor share of the container's cgroup limit or, outside a limited
// cgroup, of physical RAM. If neither can be read the budget is unbounded and
// the CPU count becomes the binding bound.
func MemoryLimit() int64 {
	return MemoryBudget(debug.SetMemoryLimit(-1), memlimit.FromCgroup, physicalMemory)
}

// MemoryBudget picks the budget from an explicit runtime limit or the first
// source that reports a non-zero size. goLimit of math.MaxInt64 or less than
// 1 means no explicit limit.
func MemoryBudget(goLimit int64, sources ...MemorySource) int64 {
	if goLimit > 0 && goLimit < math.MaxInt64 {
		return goLimit
	}
	for _, src := range sources {
		n, err := src()
		if err != nil || n == 0 {
			continue
		}
		if n > math.MaxInt64 {
			n = math.MaxInt64
		}
		return int64(n) / HeapDivisor
	}
	return math.MaxInt64
}

func physicalMemory() (uint64, error) {
	if n := memory.TotalMemory(); n > 0 {
		return n, nil
	}
	return 0, errMemoryUnknown
}

// AvailableCPUs returns the number of CPUs usable by this process.
func AvailableCPUs() int {
	return runtime.GOMAXPROCS(0)
}
