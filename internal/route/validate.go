package route

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SchemaError reports a structural defect in a route schema. Path names the
// offending node by its branch names and path pieces.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "route: " + e.Message
	}
	return fmt.Sprintf("route: %s: %s", e.Path, e.Message)
}

// Validate checks the structure of a schema in a single pass: every node is
// non-nil and well formed, every Alternative chain ends in nil or continues
// with a named node, and names within one chain are pairwise distinct.
// All problems found are returned joined.
func Validate(root Node) error {
	v := &validation{}
	v.node(root, nil)
	return errors.Join(v.errs...)
}

type validation struct {
	errs []error
}

func (v *validation) fail(path []string, format string, args ...any) {
	v.errs = append(v.errs, &SchemaError{Path: strings.Join(path, "/"), Message: fmt.Sprintf(format, args...)})
}

func (v *validation) fields(n Node, path []string) {
	err := validate.Struct(n)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.fail(path, "%s: %v", n.Kind(), err)
		return
	}
	for _, fe := range fieldErrs {
		v.fail(path, "%s.%s %s", n.Kind(), fe.Field(), describeFieldError(fe))
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "excludes":
		return fmt.Sprintf("must not contain %q", fe.Param())
	case "alpha":
		return "must contain letters only"
	case "printascii":
		return "must be printable ASCII"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func (v *validation) node(n Node, path []string) {
	if IsNil(n) {
		v.fail(path, "missing node")
		return
	}
	v.fields(n, path)

	switch n := n.(type) {
	case *Alternative:
		v.chain(n, path)
		return
	case *Capture:
		if n.Codec == nil {
			v.fail(path, "Capture %q has no codec", n.Param)
		}
		path = appendPath(path, "{"+n.Param+"}")
	case *CaptureAll:
		if n.Codec == nil {
			v.fail(path, "CaptureAll %q has no codec", n.Param)
		}
		path = appendPath(path, "{"+n.Param+"...}")
	case *QueryParam:
		if n.Codec == nil {
			v.fail(path, "QueryParam %q has no codec", n.Name)
		}
	case *QueryParams:
		if n.Codec == nil {
			v.fail(path, "QueryParams %q has no codec", n.Name)
		}
	case *Header:
		if n.Codec == nil {
			v.fail(path, "Header %q has no codec", n.Name)
		}
	case *Literal:
		path = appendPath(path, n.Segment)
	case *MethodLeaf:
		if n.Response == nil {
			v.fail(path, "MethodLeaf %s has no response type", n.Method)
		}
		return
	}
	v.node(Next(n), path)
}

// chain validates one Alternative chain and the branches hanging off it.
func (v *validation) chain(alt *Alternative, path []string) {
	seen := map[string]bool{}
	var n Node = alt
	for !IsNil(n) {
		switch cur := n.(type) {
		case *Alternative:
			if cur != alt {
				v.fields(cur, path)
			}
			if cur.Name != "" {
				if seen[cur.Name] {
					v.fail(path, "duplicate branch name %q", cur.Name)
				}
				seen[cur.Name] = true
			}
			v.node(cur.Branch, appendPath(path, cur.Name))
			n = cur.Rest
		case *Resource:
			v.fields(cur, path)
			n = cur.Methods
			if IsNil(n) {
				v.fail(path, "missing node")
			}
		case *Literal:
			v.fields(cur, path)
			path = appendPath(path, cur.Segment)
			n = cur.Next
			if IsNil(n) {
				v.fail(path, "missing node")
			}
		default:
			v.fail(path, "alternative chain continues with %s; expected Alternative, Resource or Literal", n.Kind())
			return
		}
	}
}

// IsNamed reports whether n compiles to a set of named branches: an
// Alternative, possibly behind Resource and Literal wrappers.
func IsNamed(n Node) bool {
	for !IsNil(n) {
		switch cur := n.(type) {
		case *Alternative:
			return true
		case *Resource:
			n = cur.Methods
		case *Literal:
			n = cur.Next
		default:
			return false
		}
	}
	return false
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

// IsNil reports whether n is nil or a typed nil pointer. A nil Rest in any
// of these forms ends an Alternative chain.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *Resource:
		return n == nil
	case *Alternative:
		return n == nil
	case *Literal:
		return n == nil
	case *Capture:
		return n == nil
	case *CaptureAll:
		return n == nil
	case *QueryParam:
		return n == nil
	case *QueryParams:
		return n == nil
	case *Header:
		return n == nil
	case *ReqBody:
		return n == nil
	case *MethodLeaf:
		return n == nil
	}
	return false
}
