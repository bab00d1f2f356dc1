package book

// TextStyle describes how one kind of paragraph is rendered.
type TextStyle struct {
	SizePt          int
	Bold            bool
	Italic          bool
	Align           string // "", "center" or "both"
	PageBreakBefore bool
	Heading         string // Word paragraph style, e.g. "Heading1"
}

// Style is the fixed template a book is rendered with.
type Style struct {
	Title      TextStyle
	TOCTitle   TextStyle
	TOCChapter TextStyle
	TOCTopic   TextStyle
	Chapter    TextStyle
	Topic      TextStyle
	Subsection TextStyle
	Note       TextStyle
	Content    TextStyle
}

var DefaultStyle = Style{
	Title:      TextStyle{SizePt: 28, Bold: true, Align: "center"},
	TOCTitle:   TextStyle{SizePt: 16, Bold: true, Align: "center"},
	TOCChapter: TextStyle{SizePt: 12, Bold: true},
	TOCTopic:   TextStyle{SizePt: 11},
	Chapter:    TextStyle{SizePt: 24, Bold: true, PageBreakBefore: true, Heading: "Heading1"},
	Topic:      TextStyle{SizePt: 16, Bold: true, Heading: "Heading2"},
	Subsection: TextStyle{SizePt: 14, Bold: true, Italic: true},
	Note:       TextStyle{SizePt: 11, Italic: true, Align: "both"},
	Content:    TextStyle{SizePt: 11, Align: "both"},
}
