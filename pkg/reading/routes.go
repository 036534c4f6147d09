package reading

import (
	"net/url"
	"strings"
)

const (
	LoginPath     = "/login"
	SubscribePath = "/subscribe"
	NovelListPath = "/novels"
)

func NovelPath(novelID string) string {
	return NovelListPath + "/" + url.PathEscape(novelID)
}

func ChapterPath(novelID, chapterID string) string {
	return NovelPath(novelID) + "/chapter/" + url.PathEscape(chapterID)
}

type RouteKind int

const (
	RouteUnknown RouteKind = iota
	RouteLogin
	RouteSubscribe
	RouteNovelList
	RouteNovel
	RouteChapter
)

type Route struct {
	Kind      RouteKind
	NovelID   string
	ChapterID string
}

// ParsePath is the inverse of the path builders above.
func ParsePath(path string) Route {
	switch path {
	case LoginPath:
		return Route{Kind: RouteLogin}
	case SubscribePath:
		return Route{Kind: RouteSubscribe}
	case NovelListPath, NovelListPath + "/":
		return Route{Kind: RouteNovelList}
	}

	rest, ok := strings.CutPrefix(path, NovelListPath+"/")
	if !ok {
		return Route{}
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	novelID, err := url.PathUnescape(parts[0])
	if err != nil || novelID == "" {
		return Route{}
	}

	switch {
	case len(parts) == 1:
		return Route{Kind: RouteNovel, NovelID: novelID}
	case len(parts) == 3 && parts[1] == "chapter":
		chapterID, err := url.PathUnescape(parts[2])
		if err != nil || chapterID == "" {
			return Route{}
		}
		return Route{Kind: RouteChapter, NovelID: novelID, ChapterID: chapterID}
	}
	return Route{}
}
