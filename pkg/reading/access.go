package reading

import "github.com/kerbaras/novels/pkg/data"

// Viewer is the reader identity supplied by the authentication layer.
// A nil *Viewer is an anonymous visitor.
type Viewer struct {
	UserID     string
	Role       data.Role
	Subscribed bool
}

// AuthState is the authentication layer's answer at the time a visit starts.
type AuthState struct {
	Viewer  *Viewer
	Loading bool
}

type Verdict int

const (
	Allowed Verdict = iota
	DeniedRequiresLogin
	DeniedRequiresSubscription
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case DeniedRequiresLogin:
		return "login required"
	case DeniedRequiresSubscription:
		return "subscription required"
	default:
		return "unknown"
	}
}

func (v Verdict) Allowed() bool {
	return v == Allowed
}

// Evaluate decides whether viewer may read chapter. Free chapters are open to
// everyone; paid chapters need a signed-in author, admin or subscriber.
func Evaluate(chapter *data.Chapter, viewer *Viewer) Verdict {
	if chapter != nil && chapter.IsFree {
		return Allowed
	}
	if viewer == nil {
		return DeniedRequiresLogin
	}

	var authorID string
	if chapter != nil {
		authorID = data.CanonicalID(chapter.AuthorID)
	}
	userID := data.CanonicalID(viewer.UserID)
	isAuthor := userID != "" && userID == authorID

	if isAuthor || viewer.Role.IsAdmin() || viewer.Subscribed {
		return Allowed
	}
	return DeniedRequiresSubscription
}
