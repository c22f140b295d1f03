package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiges-tech/leu/dataset"
)

func strPtr(s string) *string { return &s }

func usersDescriptor() *dataset.StaticDescriptor {
	return &dataset.StaticDescriptor{
		Order:   []string{"users"},
		Columns: map[string][]string{"users": {"id", "name"}},
		Values: map[string][]dataset.Row{
			"users": {{strPtr("1"), strPtr("ana")}, {strPtr("2"), nil}},
		},
	}
}

func TestRunToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	status := run(context.Background(), usersDescriptor(), "-", &stdout, &stderr)

	assert.Equal(t, 0, status)
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), `<table name="users">`)
	assert.Contains(t, stdout.String(), "<value>ana</value>")
	assert.Contains(t, stdout.String(), "<null></null>")
}

func TestRunToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.xml")
	var stdout, stderr bytes.Buffer
	status := run(context.Background(), usersDescriptor(), path, &stdout, &stderr)

	require.Equal(t, 0, status, stderr.String())
	assert.Empty(t, stdout.String())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `<table name="users">`)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		desc dataset.Descriptor
		out  string
		want string
	}{
		{"nil descriptor", nil, "-", "dataset:"},
		{"unknown table", &dataset.StaticDescriptor{Order: []string{"ghost"}}, "-", `unknown table "ghost"`},
		{"unwritable path", usersDescriptor(), filepath.Join(t.TempDir(), "missing", "x.xml"), "dataset:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			status := run(context.Background(), tc.desc, tc.out, &stdout, &stderr)
			assert.Equal(t, 1, status)
			assert.Contains(t, stderr.String(), tc.want)
		})
	}
}
