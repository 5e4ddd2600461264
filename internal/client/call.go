package client

import (
	"context"
	"fmt"
)

// Name selects a branch of a Named client in Resolve and Call.
type Name string

// Resolve walks c with args: a Name picks a branch, any other value is
// applied to the pending *Func. It stops at the first *Invocation and
// fails with an *ArgumentError when args run out early or are left over.
func Resolve(c Client, args ...any) (*Invocation, error) {
	for i, arg := range args {
		switch node := c.(type) {
		case Named:
			name, ok := arg.(Name)
			if !ok {
				return nil, &ArgumentError{Message: fmt.Sprintf("argument %d: expected a branch name, got %T", i, arg)}
			}
			next, err := node.Branch(string(name))
			if err != nil {
				return nil, err
			}
			c = next
		case *Func:
			next, err := node.Apply(arg)
			if err != nil {
				return nil, err
			}
			c = next
		case *Invocation:
			return nil, &ArgumentError{Message: fmt.Sprintf("%d extra argument(s)", len(args)-i)}
		}
	}
	switch node := c.(type) {
	case *Invocation:
		return node, nil
	case Named:
		return nil, &ArgumentError{Message: fmt.Sprintf("missing branch name (have %v)", node.Keys())}
	case *Func:
		return nil, &ArgumentError{Param: node.param.Name, Message: "missing " + node.param.Kind.String() + " argument"}
	}
	return nil, &ArgumentError{Message: fmt.Sprintf("unexpected client %T", c)}
}

// Call resolves c with args and invokes the resulting leaf.
func Call(ctx context.Context, c Client, args ...any) (any, error) {
	inv, err := Resolve(c, args...)
	if err != nil {
		return nil, err
	}
	return inv.Invoke(ctx)
}

// CallAs is Call with the result asserted to T.
func CallAs[T any](ctx context.Context, c Client, args ...any) (T, error) {
	var zero T
	v, err := Call(ctx, c, args...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, &ArgumentError{Message: fmt.Sprintf("result is %T, not %T", v, zero)}
	}
	return out, nil
}

// Keys returns the sorted branch names of a Named client and nil for any
// other client.
func Keys(c Client) []string {
	if n, ok := c.(Named); ok {
		return n.Keys()
	}
	return nil
}
