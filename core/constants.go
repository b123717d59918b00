package core

// Version is the SDK version reported in the default User-Agent.
const Version = "0.3.1"

// Session store keys. Namespaced so redis-backed sessions do not
// collide with other applications sharing the instance.
const (
	SessionKeyToken = "access_token"
	SessionKeyUser  = "user"
)

// CategoryAll is the sentinel category ID meaning "no category filter".
// The upstream API treats it the same way.
const CategoryAll = "0"
