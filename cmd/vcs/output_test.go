package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentence(t *testing.T) {
	assert.Equal(t, "Repository already exists", sentence("repository already exists"))
	assert.Equal(t, "Branch 'x' does not exist", sentence("Branch 'x' does not exist"))
	assert.Equal(t, "Élan", sentence("élan"))
	assert.Equal(t, "", sentence(""))
}

func TestCommitRequiresMessage(t *testing.T) {
	cmd := newCommitCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, "commit message required", err.Error())
}
