package reading

import "strings"

// AssetResolver turns stored media references into fetchable URLs.
type AssetResolver struct {
	base string
}

func NewAssetResolver(base string) *AssetResolver {
	return &AssetResolver{base: strings.TrimRight(strings.TrimSpace(base), "/")}
}

// Resolve returns ref unchanged when it is already absolute, "" when empty,
// and otherwise joins it to the base with exactly one slash.
func (r *AssetResolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if isAbsoluteURL(ref) {
		return ref
	}
	base := ""
	if r != nil {
		base = r.base
	}
	if base != "" && strings.HasPrefix(ref, base+"/") {
		return ref
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}

func (r *AssetResolver) ResolveAll(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u := r.Resolve(ref); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// isAbsoluteURL only accepts http(s) schemes; "//x" is a path with extra
// slashes, not a host.
func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
