package match

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	units "github.com/docker/go-units"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier"
)

// ErrBadRule marks rule documents that decoded as data but do not describe
// a valid rule.
var ErrBadRule = errors.New("malformed rule document")

// DecodeRule parses a YAML rule document into a matcher expression. A node
// is one of:
//
//	and: [RULE, RULE, ...]      or: [RULE, RULE, ...]      not: RULE
//	lit: true
//	name_has: ".rs"             name_suffix: "_test.go"
//	size_in: {min: 0, max: 1KB}
//	executable: true
//	content_has: "eval"
//
// A bare boolean is shorthand for lit, and size bounds accept integers or
// human byte counts ("64KB"). The decoder runs on the fused engine, so rule
// depth is not limited by recursion here.
func DecodeRule(data []byte) (*Full, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("match: parsing rule yaml: %w", err)
	}
	return decodeRuleValue(doc)
}

// ruleSeed carries a subdocument with the path that reached it for error
// reporting.
type ruleSeed struct {
	path string
	doc  any
}

func decodeRuleValue(doc any) (*Full, error) {
	return espalier.TryFold(ruleSeed{path: "$", doc: doc},
		expandRule,
		MapExpr[ruleSeed, espalier.Hole, NamePred, MetaPred, ContentPred],
		MapExpr[espalier.Hole, *Full, NamePred, MetaPred, ContentPred],
		func(e Expr[*Full, NamePred, MetaPred, ContentPred]) (*Full, error) {
			return &Full{
				Kind:    e.Kind,
				Value:   e.Value,
				Left:    e.Left,
				Right:   e.Right,
				Name:    e.Name,
				Meta:    e.Meta,
				Content: e.Content,
			}, nil
		},
	)
}

// expandRule turns one decoded document node into a rule layer whose
// children are the untouched operand subdocuments.
func expandRule(s ruleSeed) (Expr[ruleSeed, NamePred, MetaPred, ContentPred], error) {
	type layer = Expr[ruleSeed, NamePred, MetaPred, ContentPred]
	fail := func(format string, args ...any) (layer, error) {
		return layer{}, fmt.Errorf("match: %w: %s at %s", ErrBadRule, fmt.Sprintf(format, args...), s.path)
	}

	switch v := s.doc.(type) {
	case bool:
		return layer{Kind: KindLit, Value: v}, nil

	case map[string]any:
		if len(v) != 1 {
			return fail("want exactly one rule key, have %d", len(v))
		}
		var key string
		var inner any
		for k, iv := range v {
			key, inner = k, iv
		}

		switch key {
		case "lit":
			b, ok := inner.(bool)
			if !ok {
				return fail("lit wants a boolean, have %T", inner)
			}
			return layer{Kind: KindLit, Value: b}, nil

		case "not":
			return layer{Kind: KindNot, Left: ruleSeed{path: s.path + ".not", doc: inner}}, nil

		case "and", "or":
			items, ok := inner.([]any)
			if !ok || len(items) < 2 {
				return fail("%s wants a list of at least two rules", key)
			}
			kind := KindAnd
			if key == "or" {
				kind = KindOr
			}
			left := ruleSeed{path: fmt.Sprintf("%s.%s[0]", s.path, key), doc: items[0]}
			var right ruleSeed
			if len(items) == 2 {
				right = ruleSeed{path: fmt.Sprintf("%s.%s[1]", s.path, key), doc: items[1]}
			} else {
				// More than two operands right-nest into a synthetic subrule.
				right = ruleSeed{path: fmt.Sprintf("%s.%s[1:]", s.path, key), doc: map[string]any{key: items[1:]}}
			}
			return layer{Kind: kind, Left: left, Right: right}, nil

		case "name_has", "name_suffix":
			str, ok := inner.(string)
			if !ok {
				return fail("%s wants a string, have %T", key, inner)
			}
			op := NameContains
			if key == "name_suffix" {
				op = NameSuffix
			}
			return layer{Kind: KindName, Name: NamePred{Op: op, Arg: str}}, nil

		case "size_in":
			pred, err := decodeSizeSpec(inner)
			if err != nil {
				return fail("size_in: %v", err)
			}
			return layer{Kind: KindMeta, Meta: pred}, nil

		case "executable":
			b, ok := inner.(bool)
			if !ok {
				return fail("executable wants a boolean, have %T", inner)
			}
			if !b {
				// executable: false reads as "not executable".
				return layer{
					Kind: KindNot,
					Left: ruleSeed{path: s.path + ".executable", doc: map[string]any{"executable": true}},
				}, nil
			}
			return layer{Kind: KindMeta, Meta: MetaPred{Op: MetaExecutable}}, nil

		case "content_has":
			str, ok := inner.(string)
			if !ok {
				return fail("content_has wants a string, have %T", inner)
			}
			return layer{Kind: KindContent, Content: ContentPred{Op: ContentContains, Arg: str}}, nil

		default:
			return fail("unknown rule %q", key)
		}

	default:
		return fail("unsupported node %T", s.doc)
	}
}

// sizeSpec is the wire form of size_in.
type sizeSpec struct {
	Min int64 `mapstructure:"min"`
	Max int64 `mapstructure:"max"`
}

func decodeSizeSpec(raw any) (MetaPred, error) {
	spec := sizeSpec{Max: math.MaxInt64}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  byteSizeHook,
		ErrorUnused: true,
		Result:      &spec,
	})
	if err != nil {
		return MetaPred{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return MetaPred{}, err
	}
	if spec.Min < 0 || spec.Max < spec.Min {
		return MetaPred{}, fmt.Errorf("bounds [%d, %d) are negative or inverted", spec.Min, spec.Max)
	}
	return MetaPred{Op: MetaSizeIn, Min: spec.Min, Max: spec.Max}, nil
}

// byteSizeHook lets size bounds be written as human byte counts ("64KB").
func byteSizeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Int64 {
		return data, nil
	}
	n, err := units.RAMInBytes(data.(string))
	if err != nil {
		return nil, fmt.Errorf("bad size %q: %w", data, err)
	}
	return n, nil
}
