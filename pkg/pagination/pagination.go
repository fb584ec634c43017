package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 20
	// MaxLimit caps how many rows a single page may hold.
	MaxLimit = 100
)

// Params holds keyset pagination inputs parsed from a request.
type Params struct {
	Limit  int
	Cursor *Cursor
}

// Cursor points just past the last row of the previous page. Rows are ordered
// by (At DESC, ID DESC).
type Cursor struct {
	At time.Time
	ID uuid.UUID
}

// Page is one slice of results plus the cursor of the next page, empty on the
// last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalized limit plus one to detect a next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// ParseParams reads raw limit and cursor query values.
func ParseParams(limitRaw, cursorRaw string) (Params, error) {
	var p Params
	if s := strings.TrimSpace(limitRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Params{}, fmt.Errorf("limit must be a positive integer")
		}
		p.Limit = n
	}
	p.Limit = NormalizeLimit(p.Limit)

	cursor, err := ParseCursor(cursorRaw)
	if err != nil {
		return Params{}, err
	}
	p.Cursor = cursor
	return p, nil
}

// EncodeCursor builds an opaque URL-safe cursor string.
func EncodeCursor(c Cursor) string {
	payload := c.At.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a cursor string. Blank input yields nil.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	at, id, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{At: t, ID: parsedID}, nil
}

// Paginate trims a result fetched with LimitWithBuffer and computes the next
// cursor from the last kept item.
func Paginate[T any](rows []T, limit int, key func(T) Cursor) Page[T] {
	limit = NormalizeLimit(limit)
	page := Page[T]{Items: rows}
	if page.Items == nil {
		page.Items = []T{}
	}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.NextCursor = EncodeCursor(key(rows[limit-1]))
	}
	return page
}
