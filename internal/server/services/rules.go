package services

import (
	"mime"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// MaxFileSize is the largest accepted blob, inclusive.
	MaxFileSize int64 = 5 << 20
	// PresignExpiry is the lifetime of every presigned url.
	PresignExpiry = time.Hour

	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
	MaxNameLength    = 255

	maxExtLength = 16
)

// AllowedMimeTypes is the upload allow-list.
var AllowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeMimeType lower-cases the media type and drops parameters
// ("text/plain; charset=utf-8" -> "text/plain").
func NormalizeMimeType(mt string) string {
	mt = strings.TrimSpace(mt)
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(mt)
}

// IsAllowedMimeType reports whether mt is on the allow-list after
// normalization.
func IsAllowedMimeType(mt string) bool {
	_, ok := AllowedMimeTypes[NormalizeMimeType(mt)]
	return ok
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CleanFileName keeps only the last path element of a client supplied name.
func CleanFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// StorageKey builds "{ownerID}/{uuid}.{ext}". The extension comes from name,
// lower-cased and reduced to ASCII letters and digits; it is left out when
// nothing remains.
func StorageKey(ownerID, name string) string {
	key := ownerID + "/" + uuid.NewString()
	if ext := keyExtension(name); ext != "" {
		key += "." + ext
	}
	return key
}

func keyExtension(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	var b strings.Builder
	for _, r := range strings.ToLower(ext) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxExtLength {
		out = out[:maxExtLength]
	}
	return out
}

// OwnsKey reports whether key has exactly the shape StorageKey produces for
// ownerID.
func OwnsKey(ownerID, key string) bool {
	rest, ok := strings.CutPrefix(key, ownerID+"/")
	if !ok || ownerID == "" {
		return false
	}
	id, ext, hasExt := strings.Cut(rest, ".")
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return false
	}
	if !hasExt {
		return true
	}
	return ext != "" && keyExtension("x."+ext) == ext
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
