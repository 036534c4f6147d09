package data

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type Role string

const (
	RoleReader     Role = "reader"
	RoleAuthor     Role = "author"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsAdmin reports whether the role bypasses paid-chapter checks.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Novel struct {
	ID           string
	Title        string
	Description  string
	CoverImage   string
	Illustration string
	AuthorID     string
	AuthorName   string
	Views        int64
	SerialDays   []string
	Tags         []string
	Genre        string
	Status       string // "syncing", "completed", "partial"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NovelRef points at a chapter's novel. Depending on where the chapter came
// from it is either a bare id or the embedded novel document.
type NovelRef struct {
	ID    string
	Novel *Novel
}

type Chapter struct {
	ID        string
	Novel     NovelRef
	Title     string
	Content   string
	Images    []string
	Audio     string
	IsFree    bool
	AuthorID  string
	FontStyle string
	CreatedAt time.Time
}

type User struct {
	ID         string
	Username   string
	Role       Role
	Subscribed bool
}

// CanonicalID turns the different id representations (strings, numbers,
// stringers) into one comparable string.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(id.String())
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}
