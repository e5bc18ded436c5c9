package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mappingStrings(ms []PathMapping) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

func TestRootMapping(t *testing.T) {
	e := Sum(Int(1), Int(2)).WithOrigin(NewRootOrigin())

	assert.Equal(t, []string{"[.] Shift [.]"}, mappingStrings(e.PathMappings(RootPath())))
}

func TestCombineMappings(t *testing.T) {
	e := Sum(Int(1), Int(2), Int(3)).WithOrigin(NewRootOrigin())
	c := e.Children()

	result := Sum(Int(3).WithOrigin(Combined(c[0], c[1])), c[2])

	assert.Equal(t, []string{
		"[./0, ./1, ./1:outerOp] Combine [./0]",
		"[./2] Shift [./1]",
	}, mappingStrings(result.MergedPathMappings(RootPath())))
}

func TestCombineKinds(t *testing.T) {
	e := Sum(Int(1), Int(2)).WithOrigin(NewRootOrigin())

	tests := []struct {
		name string
		from []*Expression
		want PathMappingType
	}{
		{"none", nil, MappingIntroduce},
		{"one", []*Expression{e.FirstChild()}, MappingTransform},
		{"two", e.Children(), MappingCombine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := Int(3).WithOrigin(Combined(tt.from...)).PathMappings(RootPath())
			require.Len(t, ms, 1)
			assert.Equal(t, tt.want, ms[0].Type)
		})
	}
}

func TestMoveMappings(t *testing.T) {
	e := Sum(Int(1), Var("x")).WithOrigin(NewRootOrigin())

	moved := Var("x").WithOrigin(Moved(e.SecondChild()))
	assert.Equal(t, []string{"[./1] Move [.]"}, mappingStrings(moved.PathMappings(RootPath())))

	fromNowhere := Var("x").WithOrigin(Moved(Var("x")))
	assert.Equal(t, []string{"[] Introduce [.]"}, mappingStrings(fromNowhere.PathMappings(RootPath())))
}

func TestMoveChildrenFollowSource(t *testing.T) {
	e := Equation(Sum(Var("x"), Int(1)), Int(3)).WithOrigin(NewRootOrigin())

	moved := e.FirstChild().WithOrigin(Moved(e.FirstChild()))
	ms := moved.NthChild(1).PathMappings(RootPath().Child(1))
	assert.Equal(t, []string{"[./0/1] Move [./1]"}, mappingStrings(ms))
}

func TestCancelMappings(t *testing.T) {
	e := Sum(Var("x"), Int(1), Neg(Int(1))).WithOrigin(NewRootOrigin())
	c := e.Children()

	result := Var("x").WithOrigin(Cancelled(Moved(c[0]),
		CancelPart{Expr: c[1]}, CancelPart{Expr: c[2], Scope: ScopeOperator}))

	assert.Equal(t, []string{
		"[./0] Move [.]",
		"[./1, ./2:op] Cancel []",
	}, mappingStrings(result.PathMappings(RootPath())))
}

func TestMoveUnaryOperatorMappings(t *testing.T) {
	e := Product(Neg(Var("x")), Int(2)).WithOrigin(NewRootOrigin())
	minus := e.FirstChild()

	result := New(Op(KindMinus), e.SecondChild()).WithOrigin(MovedUnaryOperator(minus.Origin()))

	assert.Equal(t, []string{
		"[./0:op] Move [.:op]",
		"[./1] Shift [./0]",
	}, mappingStrings(result.PathMappings(RootPath())))
}

func TestFreshAndUnknown(t *testing.T) {
	assert.Equal(t, []string{"[] Introduce [./1]"},
		mappingStrings(Int(1).WithOrigin(Fresh).PathMappings(RootPath().Child(1))))
	assert.Empty(t, Int(1).WithOrigin(Unknown).PathMappings(RootPath()))
}

func TestMergePathMappings(t *testing.T) {
	from := []ScopedPath{{Path: RootPath().Child(0)}}
	ms := []PathMapping{
		{FromPaths: from, Type: MappingDistribute, ToPaths: []ScopedPath{{Path: RootPath().Child(0)}}},
		{FromPaths: from, Type: MappingDistribute, ToPaths: []ScopedPath{{Path: RootPath().Child(1)}}},
		{FromPaths: nil, Type: MappingIntroduce, ToPaths: []ScopedPath{{Path: RootPath().Child(2)}}},
		{FromPaths: nil, Type: MappingIntroduce, ToPaths: []ScopedPath{{Path: RootPath().Child(3)}}},
	}

	assert.Equal(t, []string{
		"[./0] Distribute [./0, ./1]",
		"[] Introduce [./2]",
		"[] Introduce [./3]",
	}, mappingStrings(MergePathMappings(ms)))
}

func TestTaskRootOrigin(t *testing.T) {
	e := Int(2).WithOrigin(TaskRootOrigin("#1"))
	p, ok := e.Path()
	require.True(t, ok)
	assert.Equal(t, "#1", p.String())
}
