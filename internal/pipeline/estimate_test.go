package pipeline

import (
	"errors"
	"math"
	"testing"
)

func TestEstimateWorkers(t *testing.T) {
	t.Parallel()

	const gib = int64(1) << 30

	tests := []struct {
		name      string
		maxMemory int64
		perWorker int64
		cpus      int
		override  int
		want      int
	}{
		{"override wins", 1 * gib, DefaultWorkerMemory, 4, 16, 16},
		{"memory bound below cpus", 2 * gib, DefaultWorkerMemory, 8, 0, 4},
		{"clamped to cpus", 64 * gib, DefaultWorkerMemory, 8, 0, 8},
		{"unlimited memory", math.MaxInt64, DefaultWorkerMemory, 6, 0, 6},
		{"never below one", 100 << 20, DefaultWorkerMemory, 8, 0, 1},
		{"zero memory", 0, DefaultWorkerMemory, 8, 0, 1},
		{"default per-worker budget", 1 * gib, 0, 8, 0, 2},
		{"custom per-worker budget", 1 * gib, 128 << 20, 16, 0, 8},
		{"negative override ignored", 1 * gib, DefaultWorkerMemory, 4, -3, 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EstimateWorkers(tt.maxMemory, tt.perWorker, tt.cpus, tt.override)
			if got != tt.want {
				t.Errorf("EstimateWorkers(%d, %d, %d, %d) = %d, want %d",
					tt.maxMemory, tt.perWorker, tt.cpus, tt.override, got, tt.want)
			}
		})
	}
}

func TestParseConcurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    int
		wantErr error
	}{
		{"1", 1, nil},
		{"12", 12, nil},
		{" 3 ", 3, nil},
		{"two", 0, ErrNotANumber},
		{"1.5", 0, ErrNotANumber},
		{"", 0, ErrNotANumber},
		{"0", 0, ErrNotPositive},
		{"-2", 0, ErrNotPositive},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseConcurrency(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %d, want %d", got, tt.want)
				}
				return
			}

			var argErr *ArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("expected *ArgumentError, got %T (%v)", err, err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestArgumentError_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{&ArgumentError{Err: ErrArgumentCount}, "Incorrect number of arguments, exiting!"},
		{&ArgumentError{Value: "two", Err: ErrNotANumber}, "Concurrency level should be a number: two, exiting!"},
		{&ArgumentError{Value: "0", Err: ErrNotPositive}, "Concurrency level should be a positive number: 0, exiting!"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestMemoryBudget(t *testing.T) {
	t.Parallel()

	const gib = uint64(1) << 30
	fixed := func(n uint64) MemorySource {
		return func() (uint64, error) { return n, nil }
	}
	failing := func() (uint64, error) { return 0, errors.New("no cgroup") }

	tests := []struct {
		name    string
		goLimit int64
		sources []MemorySource
		want    int64
	}{
		{"explicit limit wins", 3 << 30, []MemorySource{fixed(64 * gib)}, 3 << 30},
		{"cgroup quarter", math.MaxInt64, []MemorySource{fixed(8 * gib), fixed(64 * gib)}, 2 << 30},
		{"falls back past errors", math.MaxInt64, []MemorySource{failing, fixed(16 * gib)}, 4 << 30},
		{"zero size skipped", math.MaxInt64, []MemorySource{fixed(0), fixed(4 * gib)}, 1 << 30},
		{"nothing known", math.MaxInt64, []MemorySource{failing}, math.MaxInt64},
		{"non-positive limit ignored", 0, []MemorySource{fixed(4 * gib)}, 1 << 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MemoryBudget(tt.goLimit, tt.sources...); got != tt.want {
				t.Errorf("MemoryBudget = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateWorkers_BoundByDetectedMemory(t *testing.T) {
	t.Parallel()

	// A 2 GiB container on a 16-CPU host: 512 MiB of budget, one worker.
	container := func() (uint64, error) { return 2 << 30, nil }
	budget := MemoryBudget(math.MaxInt64, container)

	if got := EstimateWorkers(budget, DefaultWorkerMemory, 16, 0); got != 1 {
		t.Errorf("EstimateWorkers = %d, want 1", got)
	}
}

func TestMemoryLimitAndCPUs(t *testing.T) {
	t.Parallel()

	limit := MemoryLimit()
	if limit <= 0 {
		t.Error("MemoryLimit should be positive")
	}
	if limit == math.MaxInt64 {
		t.Error("MemoryLimit should be bounded by the host or container memory")
	}
	if AvailableCPUs() < 1 {
		t.Error("AvailableCPUs should be at least 1")
	}
}
