// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

// ContainerSemaphore returns the process-wide channel that throttles
// container work in tests. Send to take a slot, receive to give it back:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
//
// Capacity comes from VAULTRUN_TEST_CONTAINER_PARALLEL, otherwise
// min(GOMAXPROCS, 2). Podman on small CI runners hangs rather than errors
// when too many engine calls run at once, so the cap stays low.
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, containerParallelism())
})

func containerParallelism() int {
	if v := os.Getenv("VAULTRUN_TEST_CONTAINER_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return min(runtime.GOMAXPROCS(0), 2)
}
