package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const cookieKeyPrefix = "cookie:"

// CookieJar stores named cookies with their own expiry in a KV, encoded the way a
// Set-Cookie header carries them. A cookie past its expiry reads as absent.
type CookieJar struct {
	kv  KV
	now func() time.Time
}

// NewCookieJar wraps kv. now may be nil, in which case the wall clock is used.
func NewCookieJar(kv KV, now func() time.Time) *CookieJar {
	if now == nil {
		now = time.Now
	}
	return &CookieJar{kv: kv, now: now}
}

func (j *CookieJar) Set(ctx context.Context, name, value string, lifetime time.Duration) error {
	c := &http.Cookie{
		Name:    name,
		Value:   value,
		Path:    "/",
		Expires: j.now().Add(lifetime).UTC(),
	}
	encoded := c.String()
	if encoded == "" {
		return fmt.Errorf("invalid cookie name %q", name)
	}
	return j.kv.Set(ctx, cookieKeyPrefix+name, encoded)
}

func (j *CookieJar) Get(ctx context.Context, name string) (string, bool, error) {
	raw, ok, err := j.kv.Get(ctx, cookieKeyPrefix+name)
	if err != nil || !ok {
		return "", false, err
	}

	c, err := http.ParseSetCookie(raw)
	if err != nil || c.Value == "" {
		// Unreadable entries are dropped rather than trusted
		_ = j.kv.Delete(ctx, cookieKeyPrefix+name)
		return "", false, nil
	}

	if !c.Expires.IsZero() && !j.now().Before(c.Expires) {
		_ = j.kv.Delete(ctx, cookieKeyPrefix+name)
		return "", false, nil
	}

	return c.Value, true, nil
}

func (j *CookieJar) Remove(ctx context.Context, name string) error {
	return j.kv.Delete(ctx, cookieKeyPrefix+name)
}
