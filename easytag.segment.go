package easytag

import (
	"fmt"
	"strings"
)

// Segment is the content between two consecutive markers of one tag
// occurrence, bound to the marker that opens it.
type Segment struct {
	Marker  string
	Args    CallArgs
	Content Content
}

// String returns a debug representation of the segment
func (s Segment) String() string {
	return fmt.Sprintf("%s%s", s.Marker, s.Args)
}

// Instance is one compiled occurrence of a tag. Its segments are in document
// order and never change after compilation, so an instance may be rendered
// any number of times, concurrently.
type Instance struct {
	tag      *Tag
	segments []Segment
}

// Tag returns the tag this instance was compiled from
func (i *Instance) Tag() *Tag {
	return i.tag
}

// Segments returns a copy of the segment registry
func (i *Instance) Segments() []Segment {
	out := make([]Segment, len(i.segments))
	copy(out, i.segments)
	return out
}

// Len returns the number of segments
func (i *Instance) Len() int {
	return len(i.segments)
}

// Markers returns the marker name of every segment, in document order
func (i *Instance) Markers() []string {
	names := make([]string, len(i.segments))
	for idx, seg := range i.segments {
		names[idx] = seg.Marker
	}
	return names
}

// String returns a debug representation of the instance
func (i *Instance) String() string {
	parts := make([]string, len(i.segments))
	for idx, seg := range i.segments {
		parts[idx] = seg.String()
	}
	return fmt.Sprintf("Instance{%s: %s}", i.tag.Name(), strings.Join(parts, " "))
}
