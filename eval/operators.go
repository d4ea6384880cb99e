package eval

import (
	"math"

	"echo/ast"
	"echo/value"
)

// evalBinary implements the arithmetic, comparison, logical, and `in`
// operators. `&&`/`||` are handled by the caller before operands are
// evaluated eagerly, so short-circuiting holds even when the
// unevaluated side would itself fail.
func evalBinary(op ast.Operator, left, right value.Value) value.Result {
	switch op {
	case ast.OpAdd:
		return evalAdd(left, right)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		return evalArith(op, left, right)
	case ast.OpEq:
		return value.Ok(value.NewBool(left.Equal(right)))
	case ast.OpNe:
		return value.Ok(value.NewBool(!left.Equal(right)))
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return evalCompare(op, left, right)
	case ast.OpIn:
		return evalIn(left, right)
	default:
		return value.Err(value.ErrTypeError, "unsupported binary operator")
	}
}

func evalAdd(left, right value.Value) value.Result {
	ls, lIsStr := left.(value.StringValue)
	rs, rIsStr := right.(value.StringValue)
	if lIsStr && rIsStr {
		return value.Ok(value.NewString(ls.Val + rs.Val))
	}
	if lIsStr != rIsStr {
		return value.Err(value.ErrTypeError, "cannot add string and non-string")
	}
	return evalArith(ast.OpAdd, left, right)
}

func evalArith(op ast.Operator, left, right value.Value) value.Result {
	lf, lIsFloat := asFloat(left)
	rf, rIsFloat := asFloat(right)
	li, lIsInt := left.(value.IntValue)
	ri, rIsInt := right.(value.IntValue)

	if !lIsFloat && !lIsInt || !rIsFloat && !rIsInt {
		return value.Err(value.ErrTypeError, "arithmetic requires numeric operands")
	}

	if !lIsFloat && !rIsFloat {
		return evalIntArith(op, li.Val, ri.Val)
	}
	return evalFloatArith(op, lf, rf)
}

func asFloat(v value.Value) (float64, bool) {
	switch val := v.(type) {
	case value.FloatValue:
		return val.Val, true
	default:
		return 0, false
	}
}

func evalIntArith(op ast.Operator, a, b int64) value.Result {
	switch op {
	case ast.OpAdd:
		return value.Ok(value.NewInt(a + b))
	case ast.OpSub:
		return value.Ok(value.NewInt(a - b))
	case ast.OpMul:
		return value.Ok(value.NewInt(a * b))
	case ast.OpDiv:
		if b == 0 {
			return value.Err(value.ErrDivisionByZero, "division by zero")
		}
		return value.Ok(value.NewInt(a / b))
	case ast.OpMod:
		if b == 0 {
			return value.Err(value.ErrDivisionByZero, "division by zero")
		}
		return value.Ok(value.NewInt(a % b))
	case ast.OpPow:
		return value.Ok(value.NewInt(intPow(a, b)))
	default:
		return value.Err(value.ErrTypeError, "unsupported arithmetic operator")
	}
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func evalFloatArith(op ast.Operator, a, b float64) value.Result {
	switch op {
	case ast.OpAdd:
		return value.Ok(value.NewFloat(a + b))
	case ast.OpSub:
		return value.Ok(value.NewFloat(a - b))
	case ast.OpMul:
		return value.Ok(value.NewFloat(a * b))
	case ast.OpDiv:
		if b == 0 {
			return value.Err(value.ErrDivisionByZero, "division by zero")
		}
		return value.Ok(value.NewFloat(a / b))
	case ast.OpMod:
		if b == 0 {
			return value.Err(value.ErrDivisionByZero, "division by zero")
		}
		return value.Ok(value.NewFloat(floatMod(a, b)))
	case ast.OpPow:
		return value.Ok(value.NewFloat(floatPow(a, b)))
	default:
		return value.Err(value.ErrTypeError, "unsupported arithmetic operator")
	}
}

// floatMod is MOO's always-non-negative modulo, unlike math.Mod's
// sign-follows-dividend result.
func floatMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		m += math.Abs(b)
	}
	return m
}

func floatPow(base, exp float64) float64 {
	return math.Pow(base, exp)
}

func evalCompare(op ast.Operator, left, right value.Value) value.Result {
	if ls, ok := left.(value.StringValue); ok {
		rs, ok := right.(value.StringValue)
		if !ok {
			return value.Err(value.ErrTypeError, "comparison requires matching types")
		}
		return value.Ok(value.NewBool(compareOp(op, stringCompare(ls.Val, rs.Val))))
	}

	lf, lIsFloat := asFloat(left)
	rf, rIsFloat := asFloat(right)
	li, lIsInt := left.(value.IntValue)
	ri, rIsInt := right.(value.IntValue)

	if !lIsFloat && !lIsInt || !rIsFloat && !rIsInt {
		return value.Err(value.ErrTypeError, "comparison requires matching numeric kinds")
	}
	if !lIsFloat && !rIsFloat {
		return value.Ok(value.NewBool(compareOp(op, intCompare(li.Val, ri.Val))))
	}
	return value.Ok(value.NewBool(compareOp(op, floatCompare(lf, rf))))
}

func compareOp(op ast.Operator, cmp int) bool {
	switch op {
	case ast.OpLt:
		return cmp < 0
	case ast.OpLe:
		return cmp <= 0
	case ast.OpGt:
		return cmp > 0
	case ast.OpGe:
		return cmp >= 0
	default:
		return false
	}
}

func intCompare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func floatCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func evalIn(left, right value.Value) value.Result {
	switch container := right.(type) {
	case value.ListValue:
		return value.Ok(value.NewBool(container.Contains(left)))
	case value.MapValue:
		key, ok := left.(value.StringValue)
		if !ok {
			return value.Err(value.ErrTypeError, "map membership requires a string key")
		}
		_, found := container.Get(key.Val)
		return value.Ok(value.NewBool(found))
	default:
		return value.Err(value.ErrTypeError, "'in' requires a list or map")
	}
}

func evalUnary(op ast.Operator, operand value.Value) value.Result {
	switch op {
	case ast.OpNeg:
		switch v := operand.(type) {
		case value.IntValue:
			return value.Ok(value.NewInt(-v.Val))
		case value.FloatValue:
			return value.Ok(value.NewFloat(-v.Val))
		default:
			return value.Err(value.ErrTypeError, "unary - requires a number")
		}
	case ast.OpNot:
		b, ok := operand.(value.BoolValue)
		if !ok {
			return value.Err(value.ErrTypeError, "unary ! requires a boolean")
		}
		return value.Ok(value.NewBool(!b.Val))
	default:
		return value.Err(value.ErrTypeError, "unsupported unary operator")
	}
}
