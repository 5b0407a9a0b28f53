package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/elspais/internal/idconfig"
)

const journeyFixture = `# JNY-login-01: User logs in

**Actor**: Registered user
**Goal**: Reach the authenticated dashboard
**Context**: User has a valid account and a working session cookie jar
**Expected Outcome**: User lands on /dashboard with a valid session

1. User submits credentials on the login form.
2. System validates credentials against the account store.
3. System issues a session cookie and redirects to /dashboard.

*End* *User logs in*

---

# JNY-logout-01: User logs out

**Actor**: Authenticated user
**Goal**: End the current session

1. User clicks "Log out".

*End* *User logs out*
`

func TestJourneyParser_ParsesTwoJourneys(t *testing.T) {
	p := NewJourneyParser(idconfig.DefaultPatternConfig())
	out := p.Parse(SplitLines(journeyFixture))
	require.Len(t, out, 2)

	first := out[0]
	require.Equal(t, ContentJourney, first.Type)
	require.Equal(t, "JNY-login-01", first.Data["id"])
	require.Equal(t, "User logs in", first.Data["title"])
	require.Equal(t, "Registered user", first.Data["actor"])
	require.Equal(t, "Reach the authenticated dashboard", first.Data["goal"])
	require.Equal(t, "User has a valid account and a working session cookie jar", first.Data["context"])
	require.Equal(t, "User lands on /dashboard with a valid session", first.Data["expected_outcome"])

	steps, ok := first.Data["steps"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{
		"User submits credentials on the login form.",
		"System validates credentials against the account store.",
		"System issues a session cookie and redirects to /dashboard.",
	}, steps)

	second := out[1]
	require.Equal(t, "JNY-logout-01", second.Data["id"])
	steps2, _ := second.Data["steps"].([]string)
	require.Equal(t, []string{`User clicks "Log out".`}, steps2)
}

func TestJourneyParser_IgnoresInvalidID(t *testing.T) {
	p := NewJourneyParser(idconfig.DefaultPatternConfig())
	md := "# Not-A-Journey: whatever\n\n1. Step one.\n"
	out := p.Parse(SplitLines(md))
	require.Empty(t, out)
}

func TestJourneyParser_TerminatesAtNextRequirementHeading(t *testing.T) {
	md := `# JNY-signup-01: User signs up

**Actor**: Visitor
**Goal**: Create an account

1. Visitor fills the signup form.

# REQ-p00001: Unrelated requirement

**Level**: 0 | **Status**: draft

Body.

*End* *Unrelated requirement*
`
	p := NewJourneyParser(idconfig.DefaultPatternConfig())
	out := p.Parse(SplitLines(md))
	require.Len(t, out, 1)
	steps, _ := out[0].Data["steps"].([]string)
	require.Equal(t, []string{"Visitor fills the signup form."}, steps)
}
