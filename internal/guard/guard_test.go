package guard

import (
	"testing"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestCanRender_PublicPages(t *testing.T) {
	for _, path := range []string{"/", "/login", "/signup", "/login/", "/signup?next=/missions", ""} {
		for _, st := range []session.State{session.Unknown, session.Anonymous, session.Authenticated} {
			assert.Equal(t, Allow, CanRender(path, st).Verdict, "%q %s", path, st)
		}
	}
}

func TestCanRender_ProtectedPages(t *testing.T) {
	assert.Equal(t, RedirectTo("/login"), CanRender("/missions", session.Anonymous))
	assert.Equal(t, Decision{Verdict: Allow}, CanRender("/missions", session.Authenticated))
	assert.Equal(t, Decision{Verdict: Pending}, CanRender("/missions", session.Unknown))

	for _, path := range []string{"/learn", "/learn/polygon-basics", "/games/gas-racer", "/token-earnings/", "/loginx"} {
		assert.Equal(t, Redirect, CanRender(path, session.Anonymous).Verdict, path)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                 "/",
		"/":                "/",
		"missions":         "/missions",
		"/missions/":       "/missions",
		"/missions//":      "/missions",
		"/learn?x=1":       "/learn",
		"/learn#top":       "/learn",
		"/learn/a-b/?q=#f": "/learn/a-b",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "pending", Pending.String())
}
