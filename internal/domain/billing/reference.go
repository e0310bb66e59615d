package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// tenantDiscriminatorLen is the number of hex characters of the tenant
// digest carried in a payment reference. 40 bits is enough to keep two
// tenants in the same month from colliding while staying short enough
// for a bank transfer reference field.
const tenantDiscriminatorLen = 10

// GeneratePaymentReference builds the deterministic reference string a
// tenant quotes on bank transfers. Regenerating with the same inputs
// always yields the same reference, and references for different
// tenants in the same month never collide. Pure function, no storage
// access.
//
// Format: {YYYYMM}-{UNITCODE}-{tenant discriminator}
func GeneratePaymentReference(tenantID uuid.UUID, unitCode string, month Month) string {
	digest := sha256.Sum256([]byte(tenantID.String()))
	discriminator := strings.ToUpper(hex.EncodeToString(digest[:]))[:tenantDiscriminatorLen]
	return fmt.Sprintf("%s-%s-%s", month.Key(), sanitizeUnitCode(unitCode), discriminator)
}

// sanitizeUnitCode strips characters that banks commonly drop from
// reference fields, keeping the code recognizable on statements
func sanitizeUnitCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "UNIT"
	}
	return b.String()
}
