package fxlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgramIfElseBlock(t *testing.T) {
	raw := []any{
		"if $user.hp > 0:",
		[]any{
			"log: \"alive\"",
		},
		"else:",
		[]any{
			"log: \"fainted\"",
		},
	}
	body, err := ParseProgram(raw)
	require.NoError(t, err)
	require.Len(t, body, 1)

	ifStmt, ok := body[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.ElseIfs, 1)
	assert.Nil(t, ifStmt.ElseIfs[0].Cond)
}

func TestParseProgramForeach(t *testing.T) {
	raw := []any{
		"foreach $mon in $side.active:",
		[]any{
			"boost: $mon \"atk\" -1",
		},
	}
	body, err := ParseProgram(raw)
	require.NoError(t, err)
	require.Len(t, body, 1)

	fe, ok := body[0].(ForeachStmt)
	require.True(t, ok)
	assert.Equal(t, "mon", fe.Var)
	require.Len(t, fe.Body, 1)
}

func TestParseProgramAssignmentAndReturn(t *testing.T) {
	raw := []any{
		"$count = $count + 1",
		"return $count",
	}
	body, err := ParseProgram(raw)
	require.NoError(t, err)
	require.Len(t, body, 2)

	assign, ok := body[0].(AssignStmt)
	require.True(t, ok)
	v, ok := assign.Target.(VarExpr)
	require.True(t, ok)
	assert.Equal(t, "count", v.Name)

	ret, ok := body[1].(ReturnStmt)
	require.True(t, ok)
	assert.NotNil(t, ret.Value)
}

func TestParseProgramCallStatementWithArgs(t *testing.T) {
	raw := []any{
		"damage: $target 10",
	}
	body, err := ParseProgram(raw)
	require.NoError(t, err)
	require.Len(t, body, 1)

	exprStmt, ok := body[0].(ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.Expr.(CallExpr)
	require.True(t, ok)
	assert.Equal(t, "damage", call.Name)
	require.Len(t, call.Args, 2)
}

func TestParseProgramRejectsMalformedForeach(t *testing.T) {
	raw := []any{
		"foreach $mon without in clause:",
		[]any{"return true"},
	}
	_, err := ParseProgram(raw)
	assert.Error(t, err)
}
