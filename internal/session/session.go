package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OFFIS-RIT/claimnet/internal/metrics"
	"github.com/OFFIS-RIT/claimnet/internal/scoring"
	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrStale is returned when a result belongs to an upload that has since
	// been replaced.
	ErrStale = errors.New("session upload changed")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Session holds one uploaded claims file and the results derived from it.
// Uploading a new file into a session clears its inference result.
type Session struct {
	ID        string        `json:"id"`
	FileName  string        `json:"file_name"`
	Content   []byte        `json:"-"`
	Table     *claims.Table `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	// Revision counts uploads into the session, starting at 1.
	Revision  int           `json:"revision"`

	Inference    *scoring.InferenceResult `json:"-"`
	InferenceRan bool                     `json:"inference_ran"`

	lastSeen time.Time
}

// Upload is a parsed claims file.
type Upload struct {
	FileName string
	Content  []byte
	Table    *claims.Table
}

type Store interface {
	Create(ctx context.Context, upload Upload) (*Session, error)
	// Replace swaps the file of an existing session and drops its inference.
	Replace(ctx context.Context, id string, upload Upload) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// SaveInference stores result only if the session is still at revision.
	SaveInference(ctx context.Context, id string, revision int, result *scoring.InferenceResult) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process. Sessions idle for longer than the
// TTL are dropped on access or by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, upload Upload) (*Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := m.now()
	s := &Session{
		ID:        id,
		FileName:  upload.FileName,
		Content:   upload.Content,
		Table:     upload.Table,
		CreatedAt: now,
		UpdatedAt: now,
		Revision:  1,
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.Sessions.Set(float64(count))
	logger.Debug("[Session] Created", "id", id, "file", upload.FileName, "rows", upload.Table.Len())
	return s.snapshot(), nil
}

func (m *MemoryStore) Replace(_ context.Context, id string, upload Upload) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return nil, err
	}
	now := m.now()
	s.FileName = upload.FileName
	s.Content = upload.Content
	s.Table = upload.Table
	s.Inference = nil
	s.InferenceRan = false
	s.Revision++
	s.UpdatedAt = now
	s.lastSeen = now

	logger.Debug("[Session] Replaced upload", "id", id, "file", upload.FileName, "rows", upload.Table.Len())
	return s.snapshot(), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return nil, err
	}
	s.lastSeen = m.now()
	return s.snapshot(), nil
}

func (m *MemoryStore) SaveInference(_ context.Context, id string, revision int, result *scoring.InferenceResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return err
	}
	if s.Revision != revision {
		return fmt.Errorf("%w: inference ran on revision %d, session is at %d", ErrStale, revision, s.Revision)
	}
	now := m.now()
	s.Inference = result
	s.InferenceRan = true
	s.UpdatedAt = now
	s.lastSeen = now
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	metrics.Sessions.Set(float64(count))
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.Sessions.Set(float64(count))
	if removed > 0 {
		logger.Debug("[Session] Swept expired sessions", "removed", removed, "live", count)
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// live returns the session with id, evicting it if expired. Callers hold mu.
func (m *MemoryStore) live(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(s, m.now()) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) expired(s *Session, now time.Time) bool {
	return now.Sub(s.lastSeen) > m.ttl
}

func (s *Session) snapshot() *Session {
	cp := *s
	return &cp
}
