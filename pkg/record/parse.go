package record

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// recordLexer defines the lexical structure of the s-expression text form.
var recordLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run to end of line, Lisp style.
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},

	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Bool", Pattern: `\b(?:true|false)\b`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-]*`},
})

// textDocument is the grammar root: a sequence of top-level nodes.
type textDocument struct {
	Nodes []*textNode `parser:"@@*"`
}

// textNode is a parenthesized (key items...) form.
type textNode struct {
	Key   string      `parser:"'(' @Ident"`
	Items []*textItem `parser:"@@* ')'"`
}

// textItem is a single value inside a node: a scalar or a nested node.
type textItem struct {
	Str    *string   `parser:"  @String"`
	Bool   *string   `parser:"| @Bool"`
	Number *string   `parser:"| @Number"`
	Node   *textNode `parser:"| @@"`
}

var textParser = participle.MustBuild[textDocument](
	participle.Lexer(recordLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Parse reads s-expression text and returns the corresponding record
// tree. Top-level forms become the entries of the returned record.
func Parse(r io.Reader) (*Record, error) {
	doc, err := textParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return documentToRecord(doc)
}

// ParseString parses s-expression text from a string.
func ParseString(input string) (*Record, error) {
	doc, err := textParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return documentToRecord(doc)
}

// ParseFile parses s-expression text from a file.
func ParseFile(filename string) (*Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func documentToRecord(doc *textDocument) (*Record, error) {
	root := New()
	for _, node := range doc.Nodes {
		if err := appendNode(root, node); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// appendNode converts a parsed node into an entry of parent. A node
// holding exactly one scalar becomes a scalar entry; a node holding
// only nested nodes (or nothing) becomes a child record. Mixed forms
// are rejected since the encoder never produces them.
func appendNode(parent *Record, node *textNode) error {
	scalars := 0
	children := 0
	for _, item := range node.Items {
		if item.Node != nil {
			children++
		} else {
			scalars++
		}
	}

	switch {
	case scalars == 1 && children == 0:
		value, err := scalarValue(node.Items[0])
		if err != nil {
			return fmt.Errorf("key %q: %w", node.Key, err)
		}
		parent.entries = append(parent.entries, Entry{Key: node.Key, Value: value})
		return nil

	case scalars == 0:
		child := New()
		for _, item := range node.Items {
			if err := appendNode(child, item.Node); err != nil {
				return err
			}
		}
		parent.AddChild(node.Key, child)
		return nil

	default:
		return fmt.Errorf("key %q: malformed node mixes scalars and children", node.Key)
	}
}

func scalarValue(item *textItem) (any, error) {
	switch {
	case item.Str != nil:
		s, err := strconv.Unquote(*item.Str)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s: %w", *item.Str, err)
		}
		return s, nil

	case item.Bool != nil:
		return *item.Bool == "true", nil

	case item.Number != nil:
		text := *item.Number
		if !strings.ContainsAny(text, ".eE") {
			n, err := strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("bad integer literal %s: %w", text, err)
			}
			return n, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float literal %s: %w", text, err)
		}
		return f, nil

	default:
		return nil, fmt.Errorf("empty value")
	}
}
