package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gh-notifications-cleanup/internal/tools/batch"
)

// stubPrompt replaces the terminal check and confirmation prompt for one test.
func stubPrompt(t *testing.T, terminal bool, answer bool, err error) *[]string {
	t.Helper()
	origConfirm, origTerminal := confirm, stdinIsTerminal
	t.Cleanup(func() {
		confirm, stdinIsTerminal = origConfirm, origTerminal
	})

	var prompts []string
	stdinIsTerminal = func(io.Reader) bool { return terminal }
	confirm = func(title string) (bool, error) {
		prompts = append(prompts, title)
		return answer, err
	}
	return &prompts
}

func TestClean_Accept(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	prompts := stubPrompt(t, true, true, nil)

	stdout, _, code := execute("clean")

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"Found 2 closed PR/Issue notification(s). Do you want to close them?"}, *prompts)
	assert.Equal(t, []string{"1", "3"}, fake.deletedIDs())
	assert.Contains(t, stdout, "Cleanup notifications...\n")
	assert.Contains(t, stdout, "Marking Closed PR as DONE\n")
	assert.Contains(t, stdout, "Marking Closed issue as DONE\n")
	assert.Contains(t, stdout, "Marked 2 of 2 notification(s) as done (0 failed).\n")
}

func TestClean_DeclineIssuesNoDeletions(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	stubPrompt(t, true, false, nil)

	stdout, _, code := execute("clean")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Aborting cleanup.\n")
	assert.NotContains(t, stdout, "Cleanup notifications...")
	assert.Empty(t, fake.deletedIDs())
}

func TestClean_PromptError(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	stubPrompt(t, true, false, errors.New("no tty"))

	_, stderr, code := execute("clean")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "confirmation failed: no tty")
	assert.Empty(t, fake.deletedIDs())
}

func TestClean_RefusesWithoutTerminal(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	prompts := stubPrompt(t, false, true, nil)

	_, stderr, code := execute("clean")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "pass --yes to confirm")
	assert.Empty(t, *prompts)
	assert.Empty(t, fake.deletedIDs())
}

func TestClean_YesSkipsPrompt(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	prompts := stubPrompt(t, false, false, nil)

	stdout, _, code := execute("clean", "--yes")

	require.Equal(t, 0, code)
	assert.Empty(t, *prompts)
	assert.Equal(t, []string{"1", "3"}, fake.deletedIDs())
	assert.Contains(t, stdout, "Marked 2 of 2 notification(s) as done (0 failed).")
}

func TestClean_JSON(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	stubPrompt(t, false, false, nil)

	stdout, _, code := execute("clean", "--yes", "--output", "json")
	require.Equal(t, 0, code)

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &br))
	assert.Equal(t, 2, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 0, br.Failed)
	assert.Equal(t, []string{"1", "3"}, fake.deletedIDs())
	assert.NotContains(t, stdout, "Marking")
}

func TestClean_JSONRequiresYes(t *testing.T) {
	fake, _ := newFakeGitHub(t)

	_, stderr, code := execute("clean", "--output", "json")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--output json requires --yes")
	assert.Empty(t, fake.deletedIDs())
}
