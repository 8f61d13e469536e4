package pipeline

import "fmt"

// DefaultMemoryThreshold is the RAM CLARK needs: 100GB.
const DefaultMemoryThreshold uint64 = 100000000000

// MemoryProbe returns the total memory of the host in bytes.
type MemoryProbe func() (uint64, error)

// MemoryAtLeast skips a stage on hosts with less than threshold bytes of RAM.
func MemoryAtLeast(probe MemoryProbe, threshold uint64) SkipFunc {
	return func(*RunContext) (bool, string) {
		total, err := probe()
		if err != nil {
			return true, fmt.Sprintf("cannot read system memory: %v", err)
		}
		if total < threshold {
			return true, fmt.Sprintf("not enough RAM: %d < %d bytes", total, threshold)
		}
		return false, ""
	}
}
