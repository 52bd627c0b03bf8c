package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix     = "post:%s"
	PostListKeyPrefix = "posts:page:%d:cat:%s:q:%s"
	CategoryKeyPrefix = "categories:active"
	ProfileKeyPrefix  = "profile:%d"
	RelatedKeyPrefix  = "post:%s:related"
)

const (
	PostTTL     = 10 * time.Minute
	PostListTTL = 2 * time.Minute
	CategoryTTL = 30 * time.Minute
	ProfileTTL  = 5 * time.Minute
	RelatedTTL  = 10 * time.Minute
)

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func PostListKey(page int, category, query string) string {
	return fmt.Sprintf(PostListKeyPrefix, page, category, query)
}

func CategoryKey() string {
	return CategoryKeyPrefix
}

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func RelatedKey(slug string) string {
	return fmt.Sprintf(RelatedKeyPrefix, slug)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the detail and related entries for a slug.
func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
	Invalidate(ctx, RelatedKey(slug))
}

// InvalidatePostLists drops every cached listing page. Listing keys vary by
// page, category and query, so a pattern scan is required.
func InvalidatePostLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:page:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoryKey())
}

func InvalidateProfile(ctx context.Context, userID uint) {
	Invalidate(ctx, ProfileKey(userID))
}
