package connection

import (
	"context"
	"encoding/base64"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

const (
	defaultCleanupInterval = time.Minute * 20
	defaultMaxLifetime     = time.Hour * 2
)

type SessionManager interface {
	GenerateNewSession(conn Conn) *Session
	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	Communicate(receiverSessionId string, msg Message) error
	CountSessions() int
	CleanupPeriodically(ctx context.Context)
	TerminateAll()
}

type BattleshipSessionManager struct {
	cleanupInterval time.Duration
	maxLifetime     time.Duration
	writeTimeout    time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func NewBattleshipSessionManager(writeTimeout time.Duration) *BattleshipSessionManager {
	initMapSize := 10

	return &BattleshipSessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		cleanupInterval: defaultCleanupInterval,
		maxLifetime:     defaultMaxLifetime,
		writeTimeout:    writeTimeout,
	}
}

func (bsm *BattleshipSessionManager) GenerateNewSession(conn Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn, bsm.writeTimeout)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

// TerminateSession closes the connection of the session and forgets it.
func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	session, prs := bsm.sessions[sessionId]
	delete(bsm.sessions, sessionId)
	bsm.mu.Unlock()

	if prs && session != nil {
		session.Close()
		log.Printf("session deleted: %s\tgame: %s", sessionId, session.GameUuid())
	}
}

// This method sends the msg to another session by its id
func (bsm *BattleshipSessionManager) Communicate(receiverSessionId string, msg Message) error {
	receiverSession, err := bsm.FindSession(receiverSessionId)
	if err != nil {
		return err
	}
	return receiverSession.WriteMessage(msg)
}

func (bsm *BattleshipSessionManager) CountSessions() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

// To ensure that there is no dangling connections,
// session manager closes the sessions that outlived
// maxLifetime on every cleanup tick.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bsm.cleanupStale()
		}
	}
}

func (bsm *BattleshipSessionManager) cleanupStale() {
	assumedClosedConns := 10
	toClose := make([]*Session, 0, assumedClosedConns)

	bsm.mu.Lock()
	for ID, session := range bsm.sessions {
		if time.Since(session.CreatedAt()) > bsm.maxLifetime {
			toClose = append(toClose, session)
			delete(bsm.sessions, ID)
		}
	}
	bsm.mu.Unlock()

	for _, session := range toClose {
		session.Close()
		log.Printf("removed stale session: %s", session.Id())
	}
}

func (bsm *BattleshipSessionManager) TerminateAll() {
	bsm.mu.Lock()
	sessions := bsm.sessions
	bsm.sessions = make(map[string]*Session, len(sessions))
	bsm.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
