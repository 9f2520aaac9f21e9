package auth

import (
	"log"
	"sync"
	"time"

	"toloka2web/models"

	"gorm.io/gorm"
)

// revokedCache is a read-through cache in front of the revoked_tokens table.
// The table is authoritative and always checked alongside; a restart loses
// only the cache, not correctness.
var revokedCache = struct {
	sync.RWMutex
	jtis map[string]struct{}
}{jtis: make(map[string]struct{})}

// RevokeToken records a jti in the persistent store and the in-memory cache.
func RevokeToken(db *gorm.DB, jti string) error {
	if err := db.Create(&models.RevokedToken{JTI: jti, RevokedAt: time.Now().UTC()}).Error; err != nil {
		// A duplicate jti means the token was already revoked; not an error
		// worth surfacing to the caller.
		var existing models.RevokedToken
		if lookupErr := db.Where("jti = ?", jti).First(&existing).Error; lookupErr != nil {
			return err
		}
	}

	revokedCache.Lock()
	revokedCache.jtis[jti] = struct{}{}
	revokedCache.Unlock()
	return nil
}

// IsTokenRevoked reports whether the jti appears in either the in-memory
// cache or the persistent store. An entry in either is sufficient.
func IsTokenRevoked(db *gorm.DB, jti string) bool {
	if jti == "" {
		return false
	}

	revokedCache.RLock()
	_, cached := revokedCache.jtis[jti]
	revokedCache.RUnlock()
	if cached {
		return true
	}

	var count int64
	if err := db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		log.Printf("Failed to check token revocation: %v", err)
		// On a store failure, fail closed for safety.
		return true
	}
	if count > 0 {
		revokedCache.Lock()
		revokedCache.jtis[jti] = struct{}{}
		revokedCache.Unlock()
		return true
	}
	return false
}

// PruneRevokedTokens deletes revocation rows older than the retention
// window; the matching tokens expired long ago and no longer need blocking.
// Returns the number of rows removed.
func PruneRevokedTokens(db *gorm.DB, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res := db.Where("revoked_at < ?", cutoff).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}

// ResetRevocationCache clears the in-memory set. Test helper.
func ResetRevocationCache() {
	revokedCache.Lock()
	revokedCache.jtis = make(map[string]struct{})
	revokedCache.Unlock()
}
