package pyast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pythaw/internal/pyast"
)

func parse(t *testing.T, source string) *pyast.File {
	t.Helper()
	p, err := pyast.NewParser()
	require.NoError(t, err)
	f := p.Parse("test.py", []byte(source))
	require.Equal(t, pyast.StatusOK, f.Status)
	return f
}

func TestBuildIndexBindsTopLevelFunctionsAndClasses(t *testing.T) {
	f := parse(t, `
def handler(event, context):
    pass


class Widget:
    def spin(self):
        pass
`)
	idx := pyast.BuildIndex(f)
	_, ok := idx.Bindings["handler"]
	require.True(t, ok)
	require.Equal(t, pyast.BindFunction, idx.Bindings["handler"].Kind)

	class, ok := idx.Classes["Widget"]
	require.True(t, ok)
	require.Contains(t, class.Methods, "spin")
}

func TestBuildIndexBindsImports(t *testing.T) {
	f := parse(t, `
import boto3
import infra.aws as ia
from os import path
from . import sibling
from .pkg import thing as aliased
`)
	idx := pyast.BuildIndex(f)

	require.Equal(t, pyast.BindImportModule, idx.Bindings["boto3"].Kind)
	require.Equal(t, "boto3", idx.Bindings["boto3"].Module)

	require.Equal(t, pyast.BindImportModule, idx.Bindings["ia"].Kind)
	require.Equal(t, "infra.aws", idx.Bindings["ia"].Module)

	require.Equal(t, pyast.BindImportSymbol, idx.Bindings["path"].Kind)
	require.Equal(t, "os", idx.Bindings["path"].Module)
	require.Equal(t, "path", idx.Bindings["path"].Symbol)

	require.Equal(t, pyast.BindImportSymbol, idx.Bindings["sibling"].Kind)
	require.True(t, idx.Bindings["sibling"].IsRelative)

	require.Equal(t, "thing", idx.Bindings["aliased"].Symbol)
	require.True(t, idx.Bindings["aliased"].IsRelative)
}

func TestFindCallsSkipsNestedScopes(t *testing.T) {
	f := parse(t, `
def outer():
    boto3.client('s3')

    def inner():
        requests.Session()

    class Nested:
        def method(self):
            psycopg2.connect()
`)
	body := pyast.ChildOfKind(f.Root.Child(0), "block")
	calls := pyast.FindCalls(f, body)

	var texts []string
	for _, c := range calls {
		if c.Simple {
			texts = append(texts, c.Text)
		}
	}
	require.Equal(t, []string{"boto3.client"}, texts)
}

func TestFindAssignmentsTracksSimpleConstructorCalls(t *testing.T) {
	f := parse(t, `
def handler(event, context):
    client = S3Client()
    other = compute_something()
`)
	body := pyast.ChildOfKind(f.Root.Child(0), "block")
	assignments := pyast.FindAssignments(f, body)
	require.Len(t, assignments, 2)
	require.Equal(t, "client", assignments[0].Target)
	require.Equal(t, "S3Client", assignments[0].CallText)
}

func TestParseFailedFileReportsStatus(t *testing.T) {
	p, err := pyast.NewParser()
	require.NoError(t, err)
	f := p.Parse("bad.py", []byte("def f(:\n  pass\n"))
	require.Equal(t, pyast.StatusFailed, f.Status)
	require.NotNil(t, f.Err)
}
