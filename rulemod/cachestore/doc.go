// Component for caching small string values with a fixed TTL.
//
// Includes an interface and implementations using redis and in-process memory.
//
// The removal engine uses this to cache the subreddit display name, which is
// effectively immutable but requires a platform API call to look up.
package cachestore
