package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupWorkspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LINEAGE_LOG_LEVEL", "error")

	out, err := execute(t, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Lineage initialized successfully!")
}

func TestInit_Twice(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "init")
	assert.ErrorContains(t, err, "already initialized")
}

func TestFactRoundTrip(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, "--user", "alice", "add", "person", "--given", "John", "--surname", "Smith")
	require.NoError(t, err)
	assert.Equal(t, "Created person 1\n", out)

	out, err = execute(t, "--user", "alice", "fact", "set", "Birth", "1", "--date", "1850", "--place", "Boston, MA")
	require.NoError(t, err)
	assert.Contains(t, out, "Birth: 1850, Boston, MA")
	assert.Contains(t, out, "for John Smith")

	out, err = execute(t, "--user", "alice", "fact", "cite", "2", "1", "--source", "1850 Census", "--detail", "p. 4")
	require.NoError(t, err)
	assert.Equal(t, "Added citation 1: 1850 Census: p. 4\n", out)

	out, err = execute(t, "facts", "person", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "John Smith\n")
	assert.Contains(t, out, "1850, Boston, MA¹")
	assert.Contains(t, out, "¹ 1850 Census: p. 4\n")

	out, err = execute(t, "events", "list", "person", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Birth")
	assert.Contains(t, out, "yes")

	out, err = execute(t, "export", "person", "1", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# John Smith")
	assert.Contains(t, out, "1. 1850 Census: p. 4")
}

func TestFactSet_Anonymous(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "--user", "alice", "add", "person", "--given", "Ann")
	require.NoError(t, err)

	_, err = execute(t, "fact", "set", "2", "1", "--date", "1900")
	assert.ErrorIs(t, err, entities.ErrOwnershipViolation)
}

func TestFactSet_NothingToSet(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "--user", "alice", "fact", "set", "2", "1")
	assert.ErrorContains(t, err, "nothing to set")
}

func TestFactShow_ReadOnlyMissingEvent(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "--user", "alice", "add", "person", "--given", "Ann")
	require.NoError(t, err)

	_, err = execute(t, "fact", "show", "Death", "1")
	require.NoError(t, err)

	out, err := execute(t, "events", "list", "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "No events found.\n", out)
}

func TestEventsAddAndDelete(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "--user", "alice", "add", "person", "--given", "Ann")
	require.NoError(t, err)

	out, err := execute(t, "--user", "alice", "events", "add", "person", "1", "Adoption")
	require.NoError(t, err)
	assert.Equal(t, "Added event 1 (Adoption)\n", out)

	out, err = execute(t, "--user", "alice", "events", "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted event 1\n", out)

	out, err = execute(t, "--user", "alice", "events", "repair", "person", "1", "Adoption")
	require.NoError(t, err)
	assert.Equal(t, "No Adoption events on person 1\n", out)
}

func TestTrees(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, "trees", "create", "second", "-d", "Second tree")
	require.NoError(t, err)
	assert.Contains(t, out, `Created tree "second"`)

	_, err = execute(t, "trees", "create", "second")
	assert.ErrorContains(t, err, "already exists")

	out, err = execute(t, "trees", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "Second tree")

	// Records are kept per tree.
	_, err = execute(t, "--user", "alice", "--tree", "second", "add", "person", "--given", "Ann")
	require.NoError(t, err)
	_, err = execute(t, "facts", "person", "1")
	assert.ErrorIs(t, err, entities.ErrEntityNotFound)

	_, err = execute(t, "trees", "delete", "second")
	assert.ErrorContains(t, err, "--force")

	out, err = execute(t, "trees", "delete", "second", "--force")
	require.NoError(t, err)
	assert.Equal(t, "Deleted tree \"second\"\n", out)

	_, err = execute(t, "--tree", "second", "facts", "person", "1")
	assert.ErrorContains(t, err, `tree "second" not found`)
}

func TestTypes(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "Individual Event")

	out, err = execute(t, "types", "--subtypes")
	require.NoError(t, err)
	assert.Contains(t, out, "Marriage End")
}

func TestImport(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "--user", "alice", "add", "person", "--given", "John", "--surname", "Smith")
	require.NoError(t, err)

	content := "owner_kind,owner_id,fact_type,date,place,source,detail\n" +
		"person,1,Birth,1850,\"Boston, MA\",1850 Census,p. 4\n" +
		"person,1,Marriage,1870,,,\n"
	require.NoError(t, os.WriteFile("facts.csv", []byte(content), 0600))

	out, err := execute(t, "--user", "alice", "import", "facts.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "line 3: Marriage is a fact of family records, not person")
	assert.Contains(t, out, "Imported: 1 facts, 1 cited, 1 errors")

	out, err = execute(t, "facts", "person", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1850, Boston, MA¹")
}
