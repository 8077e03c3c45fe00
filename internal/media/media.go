// Package media turns stored photo references into URLs clients can fetch.
package media

import (
	"context"
	"net/url"
	"strings"
)

type Resolver interface {
	URL(ctx context.Context, ref string) (string, error)
}

// ResolveAll keeps the input order. A ref that fails to resolve is skipped.
func ResolveAll(ctx context.Context, r Resolver, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := r.URL(ctx, ref)
		if err != nil || u == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}

func isAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Static joins refs onto a public base URL.
type Static struct {
	base string
}

func NewStatic(baseURL string) *Static {
	return &Static{base: strings.TrimRight(baseURL, "/")}
}

func (s *Static) URL(_ context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if isAbsolute(ref) {
		return ref, nil
	}
	parts := strings.Split(strings.TrimLeft(ref, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.base + "/" + strings.Join(parts, "/"), nil
}
