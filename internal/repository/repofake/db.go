// Package repofake provides in-memory repositories with the same contracts as
// the pgx repositories. They back unit tests and STORAGE_DRIVER=memory.
package repofake

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

type attendanceKey struct {
	sessionID uuid.UUID
	userID    uuid.UUID
}

// DB is the shared in-memory state behind every fake repository.
type DB struct {
	lock sync.RWMutex
	now  func() time.Time

	users        map[uuid.UUID]*model.User
	usersByEmail map[string]uuid.UUID

	classes       map[uuid.UUID]*model.Class
	classesByCode map[string]uuid.UUID

	sessions       map[uuid.UUID]*model.LiveSession
	sessionsByRoom map[string]uuid.UUID

	attendance map[attendanceKey]*model.Attendance
	keyLocks   keyedMutex[attendanceKey]
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		now:            time.Now,
		users:          make(map[uuid.UUID]*model.User),
		usersByEmail:   make(map[string]uuid.UUID),
		classes:        make(map[uuid.UUID]*model.Class),
		classesByCode:  make(map[string]uuid.UUID),
		sessions:       make(map[uuid.UUID]*model.LiveSession),
		sessionsByRoom: make(map[string]uuid.UUID),
		attendance:     make(map[attendanceKey]*model.Attendance),
	}
}

// Users returns the user repository view.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

// Classes returns the class repository view.
func (db *DB) Classes() *ClassRepo { return &ClassRepo{db: db} }

// Sessions returns the live session repository view.
func (db *DB) Sessions() *SessionRepo { return &SessionRepo{db: db} }

// Attendance returns the attendance repository view.
func (db *DB) Attendance() *AttendanceRepo { return &AttendanceRepo{db: db} }

// keyedMutex hands out one mutex per key. Entries are never released; the key
// space is bounded by the number of attendance records, which are kept anyway.
type keyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*sync.Mutex
}

func (k *keyedMutex[K]) Lock(key K) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[K]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
