package util

import "runtime"

// GetOptimalPoolSize returns min(max(NumCPU*2, 4), 32). Twice the core
// count keeps workers busy while others block inside cgo parser calls;
// the cap bounds per-language parser memory.
func GetOptimalPoolSize() int {
	size := runtime.NumCPU() * 2
	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}
	return size
}

// GetOptimalPoolSizeWithOverride uses the override when positive,
// otherwise the computed size.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
