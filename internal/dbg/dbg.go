// Package dbg gates diagnostic output behind named categories. Enabling or
// disabling a category must never change a verdict or a synthesized harness.
package dbg

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	mu   sync.Mutex
	cats = make(map[string]bool)
)

func Enable(names ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, n := range names {
		cats[n] = true
	}
}

func Disable(names ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, n := range names {
		delete(cats, n)
	}
}

func On(name string) bool {
	mu.Lock()
	defer mu.Unlock()
	return cats[name]
}

func Logf(name, format string, args ...interface{}) {
	if On(name) {
		log.Infof(format, args...)
	}
}
