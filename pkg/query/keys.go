package query

import "strings"

// Key names a class of cacheable view. The set is closed: every cached read
// in the application goes through one of these.
type Key string

const (
	KeyCurrentUser   Key = "current-user"
	KeyPostByID      Key = "post-by-id"
	KeyRecentPosts   Key = "recent-posts"
	KeyInfinitePosts Key = "infinite-posts"
	KeyUsers         Key = "users"
	KeyTopCreators   Key = "top-creators"
	KeySearchPosts   Key = "search-posts"
	KeyUserByID      Key = "user-by-id"
)

func (k Key) String() string {
	return string(k)
}

// With scopes the key to specific arguments, e.g. post-by-id:abc. Two reads
// with the same key and parameters observe the same cache entry.
func (k Key) With(params ...string) string {
	return strings.Join(append([]string{string(k)}, params...), ":")
}

// matches reports whether an invalidation target covers a cache entry key.
// A base key covers itself and every composite key scoped under it.
func matches(target, key string) bool {
	return key == target || strings.HasPrefix(key, target+":")
}
