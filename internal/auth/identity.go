package auth

// Identity is a normalized external identity returned by a provider. It
// contains facts only; admin standing is always resolved against the store.
type Identity struct {
	Provider string // provider tag, e.g. "twitter"
	UserID   string // provider-scoped stable user id
	Username string // display handle, informational only
}

// Session is a logged-in user held in the bounded session caches. It is
// never persisted; dropping it only forces a fresh login. AdminToken tracks
// the most recently issued admin token so issuing a new one can invalidate
// the previous one.
type Session struct {
	Identity   Identity
	AdminToken string
}
