/*
Package workers sizes worker pools in containerized environments.

Batch transforms are CPU-bound, so the pool should follow the CPUs the
process may actually use. Go 1.19+ sets GOMAXPROCS from cgroup CPU limits,
while runtime.NumCPU() still reports the host's CPUs:

	// 64 on a 64-core node, even with a 2 CPU limit
	workers := runtime.NumCPU()

	// 2 under the same limit
	workers := runtime.GOMAXPROCS(0)

# Usage

	numWorkers := workers.ForCPU(8)   // 1 per CPU, at most 8
	numWorkers := workers.ForMixed(0) // 1.5 per CPU, no cap
	numWorkers := workers.Count(3.0, 24)

# Environment Variable Override

TRANSFORM_WORKERS fixes the count regardless of CPUs:

	env:
	- name: TRANSFORM_WORKERS
	  value: "4"

Invalid, zero or negative values are ignored. The limit passed to Count
still applies.
*/
package workers
