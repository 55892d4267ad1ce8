package match

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// NameOp selects what a NamePred checks about the file name.
type NameOp uint8

const (
	// NameContains matches when the base name contains the argument.
	NameContains NameOp = iota
	// NameSuffix matches when the base name ends with the argument.
	NameSuffix
)

// NamePred tests the file's path. It needs no I/O at all.
type NamePred struct {
	Op  NameOp
	Arg string
}

// Eval applies the predicate to a slash-separated path.
func (p NamePred) Eval(filePath string) bool {
	base := path.Base(filePath)
	switch p.Op {
	case NameContains:
		return strings.Contains(base, p.Arg)
	case NameSuffix:
		return strings.HasSuffix(base, p.Arg)
	default:
		panic(fmt.Sprintf("match: unknown name op %d", p.Op))
	}
}

func (p NamePred) String() string {
	switch p.Op {
	case NameSuffix:
		return fmt.Sprintf("name_suffix(%q)", p.Arg)
	default:
		return fmt.Sprintf("name_has(%q)", p.Arg)
	}
}

// MetaOp selects what a MetaPred checks about the file's metadata.
type MetaOp uint8

const (
	// MetaSizeIn matches when Min <= size < Max.
	MetaSizeIn MetaOp = iota
	// MetaExecutable matches when any execute bit is set.
	MetaExecutable
)

// MetaPred tests data available from a single stat call.
type MetaPred struct {
	Op       MetaOp
	Min, Max int64
}

// Eval applies the predicate to the file's stat result.
func (p MetaPred) Eval(info fs.FileInfo) bool {
	switch p.Op {
	case MetaSizeIn:
		return info.Size() >= p.Min && info.Size() < p.Max
	case MetaExecutable:
		return info.Mode()&0o111 != 0
	default:
		panic(fmt.Sprintf("match: unknown meta op %d", p.Op))
	}
}

func (p MetaPred) String() string {
	switch p.Op {
	case MetaExecutable:
		return "executable()"
	default:
		return fmt.Sprintf("size_in(%d, %d)", p.Min, p.Max)
	}
}

// ContentOp selects what a ContentPred checks about the file's bytes.
type ContentOp uint8

const (
	// ContentContains matches when the file contains the argument.
	ContentContains ContentOp = iota
)

// ContentPred tests the file's bytes. Evaluating it is the expensive part;
// the phase ordering exists to avoid it whenever possible.
type ContentPred struct {
	Op  ContentOp
	Arg string
}

// Eval applies the predicate to the file's contents.
func (p ContentPred) Eval(data []byte) bool {
	switch p.Op {
	case ContentContains:
		return bytes.Contains(data, []byte(p.Arg))
	default:
		panic(fmt.Sprintf("match: unknown content op %d", p.Op))
	}
}

func (p ContentPred) String() string {
	return fmt.Sprintf("content_has(%q)", p.Arg)
}
