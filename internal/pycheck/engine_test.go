package pycheck_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pythaw/internal/handlers"
	"pythaw/internal/pyast"
	"pythaw/internal/pycheck"
	"pythaw/internal/pyresolve"
	"pythaw/internal/rules"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newRun(t *testing.T, root string) (*pycheck.Checker, *handlers.Finder) {
	t.Helper()
	parser, err := pyast.NewParser()
	require.NoError(t, err)
	cache := pyast.NewCache(parser)
	resolver := pyresolve.New(root)
	registry := rules.NewRegistry(nil, nil)
	finder, err := handlers.New(cache, []string{"handler", "lambda_handler", "*_handler"}, nil)
	require.NoError(t, err)
	return pycheck.New(cache, resolver, registry), finder
}

func findAndCheck(t *testing.T, root string) ([]string, *pycheck.Checker) {
	t.Helper()
	checker, finder := newRun(t, root)
	found, _, err := finder.Find(context.Background(), []string{root})
	require.NoError(t, err)
	pycheck.SortHandlers(found)

	var codes []string
	for _, h := range found {
		for _, v := range checker.CheckHandler(h) {
			codes = append(codes, v.Code)
		}
	}
	return codes, checker
}

func TestDirectViolationInHandlerBody(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", "import boto3\n\ndef handler(event, context):\n    client = boto3.client('s3')\n    return client\n")

	codes, _ := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
}

func TestViolationReachedThroughLocalFunctionCall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import boto3


def get_client():
    return boto3.client('s3')


def handler(event, context):
    return get_client()
`)
	codes, _ := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
}

func TestViolationReachedThroughImportedFunction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "infra/aws.py", `import boto3


def make_client():
    return boto3.client('s3')
`)
	writeFile(t, root, "h.py", `from infra.aws import make_client


def handler(event, context):
    return make_client()
`)
	codes, _ := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
}

func TestViolationReachedThroughClassConstructorAndMethod(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "infra/aws.py", `import boto3


class S3Client:
    def __init__(self):
        self.c = boto3.client('s3')

    def get(self):
        return self.c
`)
	writeFile(t, root, "h.py", `from infra.aws import S3Client


def handler(event, context):
    client = S3Client()
    return client.get()
`)
	codes, checker := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
	require.Empty(t, checker.Diagnostics)
}

func TestViolationReachedThroughDottedSubmoduleImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "infra/aws.py", `import boto3


def make_client():
    return boto3.client('s3')
`)
	writeFile(t, root, "h.py", `import infra.aws


def handler(event, context):
    return infra.aws.make_client()
`)
	codes, checker := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
	require.Empty(t, checker.Diagnostics)
}

func TestViolationReachedThroughDottedSubmoduleImportClassConstructor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "infra/aws.py", `import boto3


class S3Client:
    def __init__(self):
        self.c = boto3.client('s3')
`)
	writeFile(t, root, "h.py", `import infra.aws


def handler(event, context):
    client = infra.aws.S3Client()
    return client
`)
	codes, checker := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
	require.Empty(t, checker.Diagnostics)
}

func TestSelfRecursiveHandlerVisitedOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `import boto3


def handler(event, context):
    if event.get('retry'):
        return handler(event, context)
    return boto3.client('s3')
`)
	codes, _ := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
}

func TestMutualRecursionAcrossFilesTerminates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", `from b import bounce_b
import boto3


def bounce_a():
    boto3.client('s3')
    return bounce_b()
`)
	writeFile(t, root, "b.py", `from a import bounce_a


def bounce_b():
    return bounce_a()
`)
	writeFile(t, root, "h.py", `from a import bounce_a


def handler(event, context):
    return bounce_a()
`)
	codes, _ := findAndCheck(t, root)
	require.Equal(t, []string{"PW001"}, codes)
}

func TestTwoDisjointPathsToSameFunctionYieldTwoViolations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "shared.py", `import boto3


def make_client():
    return boto3.client('s3')
`)
	writeFile(t, root, "h.py", `from shared import make_client


def path_one():
    return make_client()


def path_two():
    return make_client()


def handler(event, context):
    path_one()
    path_two()
`)
	codes, _ := findAndCheck(t, root)
	require.Len(t, codes, 2)
	require.Equal(t, "PW001", codes[0])
	require.Equal(t, "PW001", codes[1])
}

func TestCallToUndefinedNameIsSilent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `def handler(event, context):
    return totally_undefined_thing()
`)
	codes, checker := findAndCheck(t, root)
	require.Empty(t, codes)
	require.Empty(t, checker.Diagnostics)
}

func TestUnresolvedImportProducesOneDiagnosticPerPair(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h.py", `from missing_package import do_thing


def handler(event, context):
    do_thing()
    do_thing()
`)
	_, checker := findAndCheck(t, root)
	require.Len(t, checker.Diagnostics, 1)
	require.Equal(t, "unresolved_import", string(checker.Diagnostics[0].Kind))
}

func TestExcludeAffectsOnlyHandlerEnumeration(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/lib.py", `import boto3


def make_client():
    return boto3.client('s3')
`)
	writeFile(t, root, "h.py", `from vendor.lib import make_client


def handler(event, context):
    return make_client()
`)

	parser, err := pyast.NewParser()
	require.NoError(t, err)
	cache := pyast.NewCache(parser)
	resolver := pyresolve.New(root)
	registry := rules.NewRegistry(nil, nil)
	finder, err := handlers.New(cache, []string{"handler"}, []string{"vendor"})
	require.NoError(t, err)

	found, _, err := finder.Find(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, found, 1) // vendor/lib.py excluded from handler enumeration

	checker := pycheck.New(cache, resolver, registry)
	var codes []string
	for _, h := range found {
		for _, v := range checker.CheckHandler(h) {
			codes = append(codes, v.Code)
		}
	}
	// The violation inside the excluded file is still reached via import.
	require.Equal(t, []string{"PW001"}, codes)
}
