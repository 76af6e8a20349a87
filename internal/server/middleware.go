package server

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tech-dispatch/internal/session"
)

// limiters holds one submission limiter per session id, so a busy client
// only slows itself down.
type limiters struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	byID  map[string]*rate.Limiter
}

func newLimiters(limit rate.Limit, burst int) *limiters {
	return &limiters{limit: limit, burst: burst, byID: make(map[string]*rate.Limiter)}
}

func (l *limiters) get(id string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byID[id]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byID[id] = lim
	}
	return lim
}

// retain keeps only the limiters whose session id satisfies keep.
func (l *limiters) retain(keep func(id string) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range l.byID {
		if !keep(id) {
			delete(l.byID, id)
		}
	}
}

func (s *Server) rateLimited(c *gin.Context) {
	if !s.limiters.get(s.sessionID(c)).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many submissions, slow down"})
		return
	}
	c.Next()
}

// sessionID returns the caller's session id, issuing a cookie on first contact.
func (s *Server) sessionID(c *gin.Context) string {
	sess := sessions.Default(c)
	id, _ := sess.Get(sessionKey).(string)
	if id == "" {
		id = session.NewID()
		sess.Set(sessionKey, id)
		if err := sess.Save(); err != nil {
			s.logger.Printf("Failed to save session cookie: %v", err)
		}
	}
	return id
}

func (s *Server) state(c *gin.Context) *session.State {
	return s.wire.Sessions.GetOrCreate(s.sessionID(c))
}
