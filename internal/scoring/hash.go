package scoring

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/partnerforge/partnerforge/internal/config"
)

// ConfigHash returns a SHA-256 hash of the scoring config, stored alongside
// persisted scores so results stay attributable to the weights and keyword
// tables that produced them.
func ConfigHash(cfg config.ScoringConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16]) // 32 hex chars
}
