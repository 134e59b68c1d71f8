package internal

import (
	"context"
	"fmt"
	"strings"
)

// Node is the interface all AST nodes implement
type Node interface {
	// Type returns the node type identifier
	Type() NodeType
	// Pos returns the source position of this node
	Pos() Position
	// Render produces the node's output for one render pass
	Render(ctx context.Context, scope ContextAccessor) (string, error)
	// String returns a human-readable representation
	String() string
}

// NodeList is an ordered run of nodes, the unit of content between two markers
type NodeList []Node

// Render renders every node in order and concatenates the output
func (l NodeList) Render(ctx context.Context, scope ContextAccessor) (string, error) {
	var sb strings.Builder
	for _, node := range l {
		out, err := node.Render(ctx, scope)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// IsEmpty reports whether the list holds no nodes
func (l NodeList) IsEmpty() bool {
	return len(l) == 0
}

// RootNode is the top-level container for an AST
type RootNode struct {
	Children NodeList
}

// Type returns NodeTypeRoot
func (n *RootNode) Type() NodeType {
	return NodeTypeRoot
}

// Pos returns a zero position (root has no specific position)
func (n *RootNode) Pos() Position {
	return Position{Offset: 0, Line: 1, Column: 1}
}

// Render renders all children
func (n *RootNode) Render(ctx context.Context, scope ContextAccessor) (string, error) {
	return n.Children.Render(ctx, scope)
}

// String returns a string representation of the root node
func (n *RootNode) String() string {
	var sb strings.Builder
	sb.WriteString("RootNode{\n")
	for i, child := range n.Children {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i, child.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// TextNode represents literal text content
type TextNode struct {
	pos     Position
	Content string
}

// NewTextNode creates a new text node
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{pos: pos, Content: content}
}

// Type returns NodeTypeText
func (n *TextNode) Type() NodeType {
	return NodeTypeText
}

// Pos returns the source position
func (n *TextNode) Pos() Position {
	return n.pos
}

// Render returns the literal content
func (n *TextNode) Render(context.Context, ContextAccessor) (string, error) {
	return n.Content, nil
}

// String returns a string representation
func (n *TextNode) String() string {
	content := n.Content
	if len(content) > MaxStringDisplayLength {
		content = content[:TruncatedStringLength] + TruncationSuffix
	}
	return fmt.Sprintf("TextNode{%q @ %s}", content, n.pos)
}

// VarNode outputs a resolved value
type VarNode struct {
	pos   Position
	Value Value
}

// NewVarNode creates a new variable output node
func NewVarNode(value Value, pos Position) *VarNode {
	return &VarNode{pos: pos, Value: value}
}

// Type returns NodeTypeVar
func (n *VarNode) Type() NodeType {
	return NodeTypeVar
}

// Pos returns the source position
func (n *VarNode) Pos() Position {
	return n.pos
}

// Render resolves the value and stringifies it
func (n *VarNode) Render(_ context.Context, scope ContextAccessor) (string, error) {
	val, err := n.Value.Resolve(scope)
	if err != nil {
		return "", &RenderError{Message: ErrMsgVarResolveFailed, Position: n.pos, Cause: err}
	}
	return Stringify(val), nil
}

// String returns a string representation
func (n *VarNode) String() string {
	return fmt.Sprintf("VarNode{%s @ %s}", n.Value, n.pos)
}

// TagRenderer is what a tag compiler produces for one tag occurrence
type TagRenderer interface {
	Render(ctx context.Context, scope ContextAccessor) (string, error)
}

// TagNode wraps a compiled tag occurrence
type TagNode struct {
	pos      Position
	Name     string
	Renderer TagRenderer
}

// NewTagNode creates a new tag node
func NewTagNode(name string, renderer TagRenderer, pos Position) *TagNode {
	return &TagNode{pos: pos, Name: name, Renderer: renderer}
}

// Type returns NodeTypeTag
func (n *TagNode) Type() NodeType {
	return NodeTypeTag
}

// Pos returns the source position
func (n *TagNode) Pos() Position {
	return n.pos
}

// Render delegates to the compiled tag
func (n *TagNode) Render(ctx context.Context, scope ContextAccessor) (string, error) {
	return n.Renderer.Render(ctx, scope)
}

// String returns a string representation
func (n *TagNode) String() string {
	return fmt.Sprintf("TagNode{%s @ %s}", n.Name, n.pos)
}

// RenderError represents a host-level render failure with position
type RenderError struct {
	Message  string
	Position Position
	Cause    error
}

func (e *RenderError) Error() string {
	result := fmt.Sprintf(ErrFmtWithPosition, e.Message, e.Position.String())
	if e.Cause != nil {
		result = fmt.Sprintf(ErrFmtWithCause, result, e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Render error message constants
const (
	ErrMsgVarResolveFailed = "variable resolution failed"
)
