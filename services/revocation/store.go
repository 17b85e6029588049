package revocation

import (
	"sync"
	"time"

	"gorm.io/gorm"
)

// RevokedToken persists a revoked JTI across restarts so sign-out survives
// a process bounce even though lookups are served from memory.
type RevokedToken struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	JTI       string         `json:"jti" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"not null"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

type Store interface {
	Revoke(jti string, expiresAt time.Time) error

	IsRevoked(jti string) (bool, error)

	CleanupExpired() error

	Load() error
}

// MemoryStore keeps revoked JTIs in a map and, when a database is attached,
// writes each revocation through so the set can be reloaded at startup.
type MemoryStore struct {
	mu   sync.RWMutex
	jtis map[string]time.Time
	db   *gorm.DB
}

func NewMemoryStore(db *gorm.DB) *MemoryStore {
	return &MemoryStore{
		jtis: make(map[string]time.Time),
		db:   db,
	}
}

func (m *MemoryStore) Revoke(jti string, expiresAt time.Time) error {
	m.mu.Lock()
	m.jtis[jti] = expiresAt
	m.mu.Unlock()

	if m.db != nil {
		record := RevokedToken{JTI: jti, ExpiresAt: expiresAt}
		if err := m.db.Where("jti = ?", jti).FirstOrCreate(&record).Error; err != nil {
			return err
		}
	}

	return nil
}

func (m *MemoryStore) IsRevoked(jti string) (bool, error) {
	m.mu.RLock()
	expiresAt, exists := m.jtis[jti]
	m.mu.RUnlock()

	if !exists {
		return false, nil
	}

	// Once the underlying token has expired it can no longer validate, so
	// the entry is dead weight and can be dropped on sight.
	if time.Now().After(expiresAt) {
		m.mu.Lock()
		delete(m.jtis, jti)
		m.mu.Unlock()
		return false, nil
	}

	return true, nil
}

func (m *MemoryStore) CleanupExpired() error {
	now := time.Now()

	m.mu.Lock()
	for jti, expiresAt := range m.jtis {
		if now.After(expiresAt) {
			delete(m.jtis, jti)
		}
	}
	m.mu.Unlock()

	if m.db != nil {
		if err := m.db.Unscoped().Where("expires_at <= ?", now).Delete(&RevokedToken{}).Error; err != nil {
			return err
		}
	}

	return nil
}

func (m *MemoryStore) Load() error {
	if m.db == nil {
		return nil
	}

	now := time.Now()

	var records []RevokedToken
	if err := m.db.Where("expires_at > ?", now).Find(&records).Error; err != nil {
		return err
	}

	m.mu.Lock()
	for _, record := range records {
		m.jtis[record.JTI] = record.ExpiresAt
	}
	m.mu.Unlock()

	return m.db.Unscoped().Where("expires_at <= ?", now).Delete(&RevokedToken{}).Error
}
