package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	SnippetKeyPrefix = "snippet:%s"
	FeedFirstPageKey = "snippets:feed:first"
)

const (
	SnippetTTL = 10 * time.Minute
	FeedTTL    = 30 * time.Second
)

func SnippetKey(snippetID string) string {
	return fmt.Sprintf(SnippetKeyPrefix, snippetID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateSnippet(ctx context.Context, snippetID string) {
	Invalidate(ctx, SnippetKey(snippetID))
}

func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, FeedFirstPageKey)
}
