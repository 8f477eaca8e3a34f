package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"carscout/internal/util"
)

// ActionLock lets one user action run at a time. Overlapping requests are
// refused, not queued.
type ActionLock struct {
	mu      sync.Mutex
	running string
}

func NewActionLock() *ActionLock {
	return &ActionLock{}
}

// TryAcquire marks action as running. It returns false with the name of the
// running action when another one holds the lock.
func (l *ActionLock) TryAcquire(action string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running != "" {
		return l.running, false
	}
	l.running = action
	return "", true
}

func (l *ActionLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = ""
}

// Running returns the action in progress, or "" when idle.
func (l *ActionLock) Running() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// ActionLockMiddleware answers 409 while another action is in progress.
func ActionLockMiddleware(lock *ActionLock, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		running, ok := lock.TryAcquire(action)
		if !ok {
			util.ErrorResponse(c, http.StatusConflict, util.KindBusy,
				fmt.Sprintf("Please wait for %s to finish", running), nil)
			return
		}
		defer lock.Release()

		c.Next()
	}
}
