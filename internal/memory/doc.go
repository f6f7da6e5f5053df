// Package memory sets GOMEMLIMIT for containerized deployments.
//
// Go derives GOMAXPROCS from the CPU quota but never reads the memory limit,
// so a heap that grows past the container limit is OOM-killed instead of
// triggering a collection. Call [ConfigureFromEnv] first thing in main:
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    // ...
//	}
//
// The limit is taken from, in order:
//
//   - GOMEMLIMIT: left untouched and only reported.
//   - MEMORY_LIMIT: container limit in bytes, typically from the Kubernetes
//     Downward API (resourceFieldRef limits.memory).
//   - The cgroup v2 memory.max file.
//
// MEMORY_RATIO (0 < ratio <= 1, default 0.9) is the share of the container
// limit given to the Go heap. mpv runs in its own process and is not covered.
package memory
