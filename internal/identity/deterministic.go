package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// LegacyToken returns the compact 32 character hex form used by XLF element
// ids for the given key.
func LegacyToken(key string) string {
	id := UUID(key)
	if id == uuid.Nil {
		return ""
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

// RegionToken derives the XLF id of a region that has not been persisted yet.
func RegionToken(layoutKey string, position int) string {
	return LegacyToken("go-signage:region:" + strings.TrimSpace(layoutKey) + ":" + strconv.Itoa(position))
}

// WidgetToken derives the XLF media id of a region specific widget that has
// no persisted identifier.
func WidgetToken(regionToken string, position int) string {
	return LegacyToken("go-signage:widget:" + strings.TrimSpace(regionToken) + ":" + strconv.Itoa(position))
}

// ModuleUUID returns the stable identifier of a built-in module row.
func ModuleUUID(moduleType string) uuid.UUID {
	return UUID("go-signage:module:" + strings.ToLower(strings.TrimSpace(moduleType)))
}
