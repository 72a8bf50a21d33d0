package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/keypad-calculator/pkg/types"
)

func init() {
	color.NoColor = true
}

func TestRunEval(t *testing.T) {
	tests := []struct {
		expression string
		want       string
	}{
		{"2+3×4", "14\n"},
		{"(2+3)x4", "20\n"},
		{"0.1+0.2", "0.3\n"},
		{"1/3", "0.333333333333\n"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runEval(&buf, tt.expression))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRunEvalErrors(t *testing.T) {
	var buf bytes.Buffer
	err := runEval(&buf, "5÷0")
	require.Error(t, err)
	assert.True(t, types.HasTag(err, types.TagDivisionByZero))
	assert.Equal(t, "Error\n", buf.String())

	buf.Reset()
	err = runEval(&buf, "12+")
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestRunPress(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runPress(&buf, []string{"1", "2", "+", "3"}))
	assert.Equal(t, "12+3\n= 15\n", buf.String())

	buf.Reset()
	require.NoError(t, runPress(&buf, []string{"1", "2", "+", "3", "="}))
	assert.Equal(t, "15\n", buf.String())

	buf.Reset()
	require.NoError(t, runPress(&buf, []string{"1", "÷", "0"}))
	assert.Equal(t, "1÷0\n= Error\n", buf.String())
}

func TestRunPressUnknownKey(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, runPress(&buf, []string{"1", "sqrt"}))
}

func TestServeRejectsBadFlags(t *testing.T) {
	t.Setenv("KEYCALC_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("GRPC_PORT", "")
	t.Setenv("HOST", "")

	rootCmd.SetArgs([]string{"serve", "--port", "9000", "--grpc-port", "9000"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
