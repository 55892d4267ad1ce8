package arith

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier"
)

// ErrBadDocument marks expression documents that decoded as data but do not
// describe a valid expression.
var ErrBadDocument = errors.New("malformed expression document")

// DecodeYAML decodes a YAML expression document into a Tree. A node is
// either {lit: N}, {add: [L, R]}, {sub: [L, R]}, {mul: [L, R]}, or a bare
// integer as shorthand for lit. The decoder runs on the fused engine, so
// document depth is not limited by recursion here.
func DecodeYAML(data []byte) (*Tree, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("arith: parsing yaml: %w", err)
	}
	return decodeValue(doc)
}

// DecodeJSON decodes a JSON expression document into a Tree, using the same
// node shapes as DecodeYAML. Numbers are kept as json.Number so large
// literals survive without float rounding.
func DecodeJSON(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("arith: parsing json: %w", err)
	}
	return decodeValue(doc)
}

// docSeed carries a subdocument together with the path that reached it, so
// decode errors can say where they happened.
type docSeed struct {
	path string
	doc  any
}

func decodeValue(doc any) (*Tree, error) {
	return espalier.TryFold(docSeed{path: "$", doc: doc},
		expandDocument,
		MapExpr[docSeed, espalier.Hole],
		MapExpr[espalier.Hole, *Tree],
		func(e Expr[*Tree]) (*Tree, error) {
			return &Tree{Kind: e.Kind, Lit: e.Lit, Left: e.Left, Right: e.Right}, nil
		},
	)
}

// expandDocument turns one decoded document node into an expression layer
// whose children are the untouched operand subdocuments.
func expandDocument(s docSeed) (Expr[docSeed], error) {
	switch v := s.doc.(type) {
	case map[string]any:
		if len(v) != 1 {
			return Expr[docSeed]{}, fmt.Errorf("arith: %w: want exactly one operator key at %s, have %d", ErrBadDocument, s.path, len(v))
		}
		var key string
		var inner any
		for k, iv := range v {
			key, inner = k, iv
		}

		if key == "lit" {
			n, err := asInt64(inner)
			if err != nil {
				return Expr[docSeed]{}, fmt.Errorf("arith: %w: %v at %s.lit", ErrBadDocument, err, s.path)
			}
			return Expr[docSeed]{Kind: KindLit, Lit: n}, nil
		}

		var kind Kind
		switch key {
		case "add":
			kind = KindAdd
		case "sub":
			kind = KindSub
		case "mul":
			kind = KindMul
		default:
			return Expr[docSeed]{}, fmt.Errorf("arith: %w: unknown operator %q at %s", ErrBadDocument, key, s.path)
		}

		operands, ok := inner.([]any)
		if !ok || len(operands) != 2 {
			return Expr[docSeed]{}, fmt.Errorf("arith: %w: %s wants [left, right] at %s", ErrBadDocument, key, s.path)
		}
		return Expr[docSeed]{
			Kind:  kind,
			Left:  docSeed{path: fmt.Sprintf("%s.%s[0]", s.path, key), doc: operands[0]},
			Right: docSeed{path: fmt.Sprintf("%s.%s[1]", s.path, key), doc: operands[1]},
		}, nil

	case nil:
		return Expr[docSeed]{}, fmt.Errorf("arith: %w: null node at %s", ErrBadDocument, s.path)

	default:
		n, err := asInt64(v)
		if err != nil {
			return Expr[docSeed]{}, fmt.Errorf("arith: %w: unsupported node %T at %s", ErrBadDocument, v, s.path)
		}
		return Expr[docSeed]{Kind: KindLit, Lit: n}, nil
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", n)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("literal %q is not an int64", n.String())
		}
		return i, nil
	case float64:
		return 0, fmt.Errorf("literal %v is not an integer", n)
	default:
		return 0, fmt.Errorf("literal has unsupported type %T", v)
	}
}
