package assets

import (
	"context"
	"strings"
)

// StaticLinker joins hero references onto a fixed base URL.
type StaticLinker struct {
	baseURL string
}

// NewStaticLinker builds a linker; an empty baseURL returns references unchanged.
func NewStaticLinker(baseURL string) *StaticLinker {
	return &StaticLinker{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (l *StaticLinker) Link(_ context.Context, ref string) (string, error) {
	if l.baseURL == "" || strings.Contains(ref, "://") {
		return ref, nil
	}
	return l.baseURL + "/" + strings.TrimLeft(ref, "/"), nil
}
