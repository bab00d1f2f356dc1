package syllabus

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestHTMLParser_Headings(t *testing.T) {
	input := `<!DOCTYPE html>
<html><head><title>Course</title><style>p{}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Circuit   Basics</h1>
<p>Voltage, current
and resistance.</p>
<h2>Ohm's <em>Law</em></h2>
<ul><li>Series circuits</li><li>Parallel circuits</li></ul>
<h1>Unit 2: Digital Logic</h1>
<h3>Gates</h3>
<script>var x = 1;</script>
<footer>Copyright</footer>
</body></html>`

	segments, err := (&HTMLParser{}).Parse(context.Background(), strings.NewReader(input), "course.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"Chapter 1: Circuit Basics",
		"Voltage, current and resistance.",
		"Topic: Ohm's Law",
		"• Series circuits",
		"• Parallel circuits",
		"Unit 2: Digital Logic",
		"Topic: Gates",
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("segments = %q\nwant %q", segments, want)
	}
}

func TestHTMLParser_Empty(t *testing.T) {
	segments, err := (&HTMLParser{}).Parse(context.Background(), strings.NewReader("<html><body> </body></html>"), "empty.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected no segments, got %q", segments)
	}
}
