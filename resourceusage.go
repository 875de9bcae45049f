package sfu

import "syscall"

// ResourceUsage reports process-level resource consumption, the server-side
// equivalent of Worker.getResourceUsage(). It deliberately uses
// syscall.Getrusage directly rather than a host-metrics library: those
// report whole-machine or whole-cgroup figures, while this number must be
// scoped to the single process a Worker is running in.
type ResourceUsage struct {
	// Ru_utime/Ru_stime in microseconds.
	UserTime   uint64 `json:"ru_utime"`
	SystemTime uint64 `json:"ru_stime"`

	MaxRss                 uint64 `json:"ru_maxrss"`
	InBlock                uint64 `json:"ru_inblock"`
	OutBlock               uint64 `json:"ru_oublock"`
	VoluntaryCtxSwitches   uint64 `json:"ru_nvcsw"`
	InvoluntaryCtxSwitches uint64 `json:"ru_nivcsw"`
}

// GetResourceUsage samples RUSAGE_SELF for the current process.
func GetResourceUsage() (*ResourceUsage, error) {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return nil, newError(ErrFatal, "getrusage failed: %s", err)
	}
	return &ResourceUsage{
		UserTime:               uint64(ru.Utime.Sec)*1e6 + uint64(ru.Utime.Usec),
		SystemTime:             uint64(ru.Stime.Sec)*1e6 + uint64(ru.Stime.Usec),
		MaxRss:                 uint64(ru.Maxrss),
		InBlock:                uint64(ru.Inblock),
		OutBlock:               uint64(ru.Oublock),
		VoluntaryCtxSwitches:   uint64(ru.Nvcsw),
		InvoluntaryCtxSwitches: uint64(ru.Nivcsw),
	}, nil
}
